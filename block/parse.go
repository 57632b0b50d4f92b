package block

import (
	"encoding/json"
	"fmt"
)

// wireBlock is the shape delivered by the WordPress block parser.
type wireBlock struct {
	BlockName   string         `json:"blockName"`
	Attrs       map[string]any `json:"attrs"`
	InnerHTML   string         `json:"innerHTML"`
	InnerBlocks []wireBlock    `json:"innerBlocks"`
}

// ParseTree decodes a JSON array of wire blocks into a block tree. Entries
// with an empty blockName are whitespace artifacts of the block parser and
// are skipped, at every level.
func ParseTree(data []byte) ([]*Block, error) {
	if len(data) == 0 {
		return []*Block{}, nil
	}
	var wire []wireBlock
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("unable to decode block tree: %w", err)
	}
	return fromWire(wire), nil
}

func fromWire(wire []wireBlock) []*Block {
	blocks := make([]*Block, 0, len(wire))
	for _, w := range wire {
		if w.BlockName == "" {
			continue
		}
		attrs := w.Attrs
		if attrs == nil {
			attrs = map[string]any{}
		}
		blocks = append(blocks, &Block{
			Name:      w.BlockName,
			Attrs:     attrs,
			InnerHTML: w.InnerHTML,
			Inner:     fromWire(w.InnerBlocks),
		})
	}
	return blocks
}
