package generator

import (
	"fmt"
	"net/url"
	"strings"
)

// techBadges 技术标签 -> shields.io 徽章，未收录的标签直接跳过
var techBadges = map[string]string{
	"React":          "[![React](https://img.shields.io/badge/React-20232A?style=for-the-badge&logo=react&logoColor=61DAFB)](https://reactjs.org/)",
	"Vue.js":         "[![Vue.js](https://img.shields.io/badge/Vue.js-35495E?style=for-the-badge&logo=vuedotjs&logoColor=4FC08D)](https://vuejs.org/)",
	"Angular":        "[![Angular](https://img.shields.io/badge/Angular-DD0031?style=for-the-badge&logo=angular&logoColor=white)](https://angular.io/)",
	"Svelte":         "[![Svelte](https://img.shields.io/badge/Svelte-FF3E00?style=for-the-badge&logo=svelte&logoColor=white)](https://svelte.dev/)",
	"Next.js":        "[![Next.js](https://img.shields.io/badge/Next.js-000000?style=for-the-badge&logo=nextdotjs&logoColor=white)](https://nextjs.org/)",
	"TypeScript":     "[![TypeScript](https://img.shields.io/badge/TypeScript-007ACC?style=for-the-badge&logo=typescript&logoColor=white)](https://www.typescriptlang.org/)",
	"Vite":           "[![Vite](https://img.shields.io/badge/Vite-646CFF?style=for-the-badge&logo=vite&logoColor=white)](https://vitejs.dev/)",
	"Tailwind CSS":   "[![Tailwind CSS](https://img.shields.io/badge/Tailwind_CSS-38B2AC?style=for-the-badge&logo=tailwind-css&logoColor=white)](https://tailwindcss.com/)",
	"Node.js":        "[![Node.js](https://img.shields.io/badge/Node.js-43853D?style=for-the-badge&logo=node.js&logoColor=white)](https://nodejs.org/)",
	"Express.js":     "[![Express.js](https://img.shields.io/badge/Express.js-000000?style=for-the-badge&logo=express&logoColor=white)](https://expressjs.com/)",
	"Python":         "[![Python](https://img.shields.io/badge/Python-3776AB?style=for-the-badge&logo=python&logoColor=white)](https://python.org/)",
	"Go":             "[![Go](https://img.shields.io/badge/Go-00ADD8?style=for-the-badge&logo=go&logoColor=white)](https://go.dev/)",
	"Rust":           "[![Rust](https://img.shields.io/badge/Rust-000000?style=for-the-badge&logo=rust&logoColor=white)](https://www.rust-lang.org/)",
	"Docker":         "[![Docker](https://img.shields.io/badge/Docker-2496ED?style=for-the-badge&logo=docker&logoColor=white)](https://www.docker.com/)",
	"Docker Compose": "[![Docker Compose](https://img.shields.io/badge/Docker_Compose-2496ED?style=for-the-badge&logo=docker&logoColor=white)](https://docs.docker.com/compose/)",
}

// Badges 按技术出现顺序输出徽章，最后总是追加许可证徽章
func Badges(technologies []string, license string) string {
	lines := make([]string, 0, len(technologies)+1)
	for _, tech := range technologies {
		if badge, ok := techBadges[tech]; ok {
			lines = append(lines, badge)
		}
	}
	lines = append(lines, licenseBadge(license))
	return strings.Join(lines, "\n")
}

func licenseBadge(license string) string {
	return fmt.Sprintf("[![License](https://img.shields.io/badge/License-%s-green.svg?style=for-the-badge)](LICENSE)", shieldsEscape(license))
}

// techCell 技术表格中的通用徽章
func techCell(tech string) string {
	return fmt.Sprintf("![%s](https://img.shields.io/badge/%s-blue)", tech, shieldsEscape(tech))
}

// shieldsEscape shields.io 路径段转义：- 写成 --，_ 写成 __，空格写成 _
func shieldsEscape(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, " ", "_")
	return url.PathEscape(s)
}
