package render

import "image/color"

// BorderedText draws text with a contrasting outline so it stays legible on
// any background.
type BorderedText struct {
	interior color.RGBA
	exterior color.RGBA
	textSize float32
}

// NewBorderedText creates white text with a black outline.
func NewBorderedText(textSize float32) *BorderedText {
	return NewBorderedTextColors(White, Black, textSize)
}

// NewBorderedTextColors creates bordered text with explicit colors.
func NewBorderedTextColors(interior, exterior color.RGBA, textSize float32) *BorderedText {
	return &BorderedText{interior: interior, exterior: exterior, textSize: textSize}
}

// TextSize returns the text height in canvas pixels.
func (b *BorderedText) TextSize() float32 {
	return b.textSize
}

// DrawText draws text with its baseline-left corner at (x, y).
func (b *BorderedText) DrawText(c Canvas, x, y float32, text string) {
	c.DrawText(text, x, y, Paint{
		Color:       b.exterior,
		Style:       StyleStroke,
		StrokeWidth: b.textSize / 8,
		TextSize:    b.textSize,
	})
	c.DrawText(text, x, y, Paint{
		Color:    b.interior,
		Style:    StyleFill,
		TextSize: b.textSize,
	})
}

// DrawTextWithBackground fills a box of bg's color behind the text, then
// draws the text. The box spans from y - textSize down to y.
func (b *BorderedText) DrawTextWithBackground(c Canvas, x, y float32, text string, bg Paint) {
	w, _ := c.MeasureText(text, Paint{TextSize: b.textSize})
	bg.Style = StyleFill
	c.DrawRect(rect(x, y-b.textSize, x+w, y), bg)
	b.DrawText(c, x, y, text)
}
