package reflow

import "strings"

// BlockKind identifies the role shared by all lines of a block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullets
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockBullets:
		return "bullets"
	default:
		return "paragraph"
	}
}

// Block is an ordered, non-empty run of same-role lines. Lines are stored
// trimmed; original line order is preserved.
type Block struct {
	Kind  BlockKind
	Lines []string
}

// Segment walks the classified lines left to right and groups them into
// blocks. Blank lines separate blocks and are never emitted. Every non-blank
// line lands in exactly one block:
//
//   - contiguous bullet lines form one bullets block
//   - a heading is always a single-line block, never merged with neighbours
//   - anything else accumulates into a paragraph block until a blank,
//     heading, or bullet line ends the run
func (f *Formatter) Segment(lines []string, roles []LineRole) []Block {
	var blocks []Block
	i := 0
	for i < len(lines) {
		switch roles[i] {
		case RoleBlank:
			i++
		case RoleBullet:
			var items []string
			for i < len(lines) && roles[i] == RoleBullet {
				items = append(items, strings.TrimSpace(lines[i]))
				i++
			}
			blocks = append(blocks, Block{Kind: BlockBullets, Lines: items})
		case RoleHeading:
			blocks = append(blocks, Block{Kind: BlockHeading, Lines: []string{strings.TrimSpace(lines[i])}})
			i++
		default:
			var frags []string
			for i < len(lines) && roles[i] == RoleFragment {
				frags = append(frags, strings.TrimSpace(lines[i]))
				i++
			}
			blocks = append(blocks, Block{Kind: BlockParagraph, Lines: frags})
		}
	}
	return blocks
}
