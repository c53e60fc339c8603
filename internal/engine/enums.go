package engine

// Layer is a render layer. Values are bit indices into a layer mask.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerWorld
	LayerEffects
	LayerUI
)

// Mask returns a layer mask containing only l.
func (l Layer) Mask() uint32 { return 1 << l }

// BlendMode selects how a drawable combines with what is behind it.
type BlendMode int32

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
	BlendMultiply
)

// Anchor is the point of a label its position refers to.
type Anchor int8

const (
	AnchorTopLeft Anchor = iota
	AnchorCenter
	AnchorBottomRight
)
