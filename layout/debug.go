package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将页面排版信息（不含图像数据）输出为 JSON，便于调试或可视化。
func WriteDebugJSON(page *Page, path string) error {
	if page == nil {
		return nil
	}
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
