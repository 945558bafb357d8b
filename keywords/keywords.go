// Package keywords 搜索关键词的加载与合并。
package keywords

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load 合并命令行关键词与文件关键词，保持出现顺序并去重。
// 文件每行可含多个以逗号（中英文）分隔的词，# 开头为注释。
func Load(values []string, file string) ([]string, error) {
	var merged []string
	seen := make(map[string]bool)

	add := func(raw string) {
		for _, part := range splitKeywords(raw) {
			if part != "" && !seen[part] {
				seen[part] = true
				merged = append(merged, part)
			}
		}
	}

	for _, v := range values {
		add(v)
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open keyword file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read keyword file: %w", err)
		}
	}

	return merged, nil
}

func splitKeywords(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '，'
	})
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
