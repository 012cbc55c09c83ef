package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ManifestFileName 仓库根目录下的依赖声明文件
const ManifestFileName = "package.json"

// Script 一条 npm script
type Script struct {
	Name    string
	Command string
}

// Scripts 保留 package.json 中声明顺序的 scripts 列表
type Scripts []Script

// Get 按名称查找 script
func (s Scripts) Get(name string) (string, bool) {
	for _, script := range s {
		if script.Name == name {
			return script.Command, true
		}
	}
	return "", false
}

func (s Scripts) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// MarshalJSON 按声明顺序输出 JSON 对象
func (s Scripts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, script := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(script.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(script.Command)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 逐个 token 读取对象以保留键的顺序，重复的键以最后一次为准
func (s *Scripts) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		*s = nil
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("scripts 必须是对象")
	}

	var scripts Scripts
	index := map[string]int{}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("scripts 的键必须是字符串")
		}
		var command string
		if err := decoder.Decode(&command); err != nil {
			return fmt.Errorf("script %q: %w", key, err)
		}
		if i, seen := index[key]; seen {
			scripts[i].Command = command
			continue
		}
		index[key] = len(scripts)
		scripts = append(scripts, Script{Name: key, Command: command})
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	*s = scripts
	return nil
}

// MarshalYAML 输出有序的 YAML mapping
func (s Scripts) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, script := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: script.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: script.Command},
		)
	}
	return node, nil
}

// Manifest package.json 中与分析相关的字段
type Manifest struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         Scripts           `json:"scripts"`
	Main            string            `json:"main"`
	Module          string            `json:"module"`
	Bin             json.RawMessage   `json:"bin"`
}

// ParseManifest 解析 package.json 内容
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", ManifestFileName, err)
	}
	return &manifest, nil
}

// HasBin 判断是否声明了可执行入口 (字符串或对象形式)
func (m *Manifest) HasBin() bool {
	if m == nil {
		return false
	}
	trimmed := string(bytes.TrimSpace(m.Bin))
	switch trimmed {
	case "", "null", `""`, "{}":
		return false
	}
	return true
}

// HasDependency 判断运行时或开发依赖中是否存在 name
func (m *Manifest) HasDependency(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}

// HasRuntimeDependency 只检查 dependencies
func (m *Manifest) HasRuntimeDependency(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Dependencies[name]
	return ok
}
