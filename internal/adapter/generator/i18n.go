package generator

import (
	"fmt"

	"github-readme-generator/internal/domain"
)

// Text 一种语言下文档使用的全部文案
// 语言只影响措辞，不影响生成哪些段落
type Text struct {
	Features       string
	TechStack      string
	Category       string
	Technologies   string
	MainTech       string
	ProjectType    string
	PackageManager string
	Installation   string
	Prerequisites  string
	Steps          string
	Structure      string
	Scripts        string
	Contributing   string
	License        string
	Footer         string

	FeatureTech     string
	FeatureProject  string // %s = 项目类型
	FeatureTests    string
	FeatureCI       string
	LicenseSentence string // %s = 许可证名称

	CloneComment   string
	InstallComment string
	DevComment     string
	StartComment   string
	RunComment     string

	NodePrerequisite string

	ContributingSteps []string
}

var english = Text{
	Features:       "Features",
	TechStack:      "Tech Stack",
	Category:       "Category",
	Technologies:   "Technologies",
	MainTech:       "Core Technologies",
	ProjectType:    "Project Type",
	PackageManager: "Package Manager",
	Installation:   "Installation",
	Prerequisites:  "Prerequisites",
	Steps:          "Setup",
	Structure:      "Project Structure",
	Scripts:        "Available Scripts",
	Contributing:   "Contributing",
	License:        "License",
	Footer:         "If you like this project, don't forget to give it a star!",

	FeatureTech:     "⚡ **Modern Technologies** - %s",
	FeatureProject:  "🎯 **%s Project** - Professional development",
	FeatureTests:    "🧪 **Test Coverage** - Comprehensive test suite",
	FeatureCI:       "🔄 **CI/CD** - Automated deployment",
	LicenseSentence: "This project is licensed under the %s.",

	CloneComment:   "# Clone the repository",
	InstallComment: "# Install dependencies",
	DevComment:     "# Start the development server",
	StartComment:   "# Start the application",
	RunComment:     "# Run the project",

	NodePrerequisite: "Node.js 18+",

	ContributingSteps: []string{
		"🍴 **Fork** the repository",
		"🌿 **Create a feature branch**: `git checkout -b feature/amazing-feature`",
		"💾 **Commit** your changes: `git commit -m 'feat: add amazing feature'`",
		"📤 **Push** the branch: `git push origin feature/amazing-feature`",
		"🔄 **Open a Pull Request**",
	},
}

var turkish = Text{
	Features:       "Özellikler",
	TechStack:      "Teknoloji Yığını",
	Category:       "Kategori",
	Technologies:   "Teknolojiler",
	MainTech:       "Ana Teknolojiler",
	ProjectType:    "Proje Türü",
	PackageManager: "Paket Yöneticisi",
	Installation:   "Kurulum",
	Prerequisites:  "Ön Gereksinimler",
	Steps:          "Kurulum Adımları",
	Structure:      "Proje Yapısı",
	Scripts:        "Kullanılabilir Komutlar",
	Contributing:   "Katkıda Bulunma",
	License:        "Lisans",
	Footer:         "Bu projeyi beğendiyseniz yıldız vermeyi unutmayın!",

	FeatureTech:     "⚡ **Modern Teknolojiler** - %s",
	FeatureProject:  "🎯 **%s Projesi** - Profesyonel geliştirme",
	FeatureTests:    "🧪 **Test Kapsamı** - Kapsamlı test suite",
	FeatureCI:       "🔄 **CI/CD** - Otomatik deployment",
	LicenseSentence: "Bu proje %s lisansı altında lisanslanmıştır.",

	CloneComment:   "# Repository'yi klonlayın",
	InstallComment: "# Bağımlılıkları yükleyin",
	DevComment:     "# Geliştirme sunucusunu başlatın",
	StartComment:   "# Uygulamayı başlatın",
	RunComment:     "# Projeyi çalıştırın",

	NodePrerequisite: "Node.js 18+",

	ContributingSteps: []string{
		"🍴 **Fork** edin",
		"🌿 **Feature branch** oluşturun: `git checkout -b feature/amazing-feature`",
		"💾 **Commit** yapın: `git commit -m 'feat: add amazing feature'`",
		"📤 **Push** edin: `git push origin feature/amazing-feature`",
		"🔄 **Pull Request** açın",
	},
}

// bilingual 标题使用 "英文 / 土耳其文"，正文沿用英文
func bilingual(primary, secondary Text) Text {
	pair := func(a, b string) string {
		if a == b {
			return a
		}
		return a + " / " + b
	}
	out := primary
	out.Features = pair(primary.Features, secondary.Features)
	out.TechStack = pair(primary.TechStack, secondary.TechStack)
	out.Installation = pair(primary.Installation, secondary.Installation)
	out.Prerequisites = pair(primary.Prerequisites, secondary.Prerequisites)
	out.Steps = pair(primary.Steps, secondary.Steps)
	out.Structure = pair(primary.Structure, secondary.Structure)
	out.Scripts = pair(primary.Scripts, secondary.Scripts)
	out.Contributing = pair(primary.Contributing, secondary.Contributing)
	out.License = pair(primary.License, secondary.License)
	return out
}

var catalog = map[domain.Language]Text{
	domain.LanguageEnglish: english,
	domain.LanguageTurkish: turkish,
	domain.LanguageMulti:   bilingual(english, turkish),
}

// NormalizeLanguage 未知语言回退到英文
func NormalizeLanguage(language domain.Language) domain.Language {
	if _, ok := catalog[language]; ok {
		return language
	}
	return domain.LanguageEnglish
}

// NormalizeStyle 未知风格回退到 modern
// 三种风格目前生成同样的结构，只记录在元数据里
func NormalizeStyle(style domain.Style) domain.Style {
	switch style {
	case domain.StyleMinimal, domain.StyleModern, domain.StyleDetailed:
		return style
	}
	return domain.StyleModern
}

func textFor(language domain.Language) Text {
	return catalog[NormalizeLanguage(language)]
}

func (t Text) licenseLine(license string) string {
	return fmt.Sprintf(t.LicenseSentence, license)
}
