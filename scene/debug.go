package scene

import (
	"encoding/json"
	"os"
)

type debugLayer struct {
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Bound Rect   `json:"bounds"`
	*Layer
}

// WriteDebugJSON 将场景图层（底→顶）连同类型、显示名与包围盒输出为 JSON，便于调试。
func WriteDebugJSON(s *Scene, path string) error {
	if s == nil {
		return nil
	}
	out := make([]debugLayer, 0, s.Len())
	for i, l := range s.layers {
		out = append(out, debugLayer{Index: i, Kind: l.Kind(), Label: l.Label(), Bound: l.Bounds(), Layer: l})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
