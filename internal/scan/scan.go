package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// CSVFiles 递归列出 root 下的 .csv 文件（绝对路径，按相对路径排序）。
//
// excludeDirs 相对 root（绝对路径按原样处理）；命中的目录整体跳过。
// 只看文件名，不读内容：表头/数值校验留给 psdcsv。
func CSVFiles(root string, excludeDirs []string) ([]string, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	type hit struct{ abs, rel string }
	hits := make([]hit, 0, 16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		hits = append(hits, hit{abs: path, rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].rel < hits[j].rel })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.abs
	}
	return out, nil
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if !filepath.IsAbs(x) {
			x = filepath.Join(root, x)
		}
		excluded = append(excluded, filepath.Clean(x))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
