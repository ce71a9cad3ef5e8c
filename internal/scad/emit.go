// Package scad writes an OpenSCAD program for a laid-out QR card.
package scad

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"qr3d/internal/bitmap"
	"qr3d/internal/card"
	"qr3d/internal/layout"
)

// Segments is $fn for the corner and hole cylinders. Eight facets print fine
// at these sizes and keep the render fast.
const Segments = 8

// TextSpacing tightens the monospace glyph advance.
const TextSpacing = 0.85

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote returns s as an OpenSCAD string literal.
func Quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

// num formats a length with the shortest representation that round-trips.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Emit renders the card as OpenSCAD source. The output depends only on its
// arguments, so identical inputs give byte-identical programs.
func Emit(bm *bitmap.Bitmap, res layout.Result, cfg card.Config, source string) []byte {
	var b bytes.Buffer

	bottomText, topText := "", ""
	if res.Bottom.Present {
		bottomText = cfg.TextBottom
	}
	if res.Top.Present {
		topText = cfg.TextTop
	}

	fmt.Fprintf(&b, "// QR Code 3D Model\n")
	fmt.Fprintf(&b, "// Generated from: %s\n", strings.ReplaceAll(source, "\n", " "))
	fmt.Fprintf(&b, "// Mode: %s\n\n", res.Mode)
	fmt.Fprintf(&b, "$fn = %d;\n\n", Segments)

	fmt.Fprintf(&b, "// Parameters\n")
	fmt.Fprintf(&b, "card_width = %s;\n", num(res.CardWidth))
	fmt.Fprintf(&b, "card_length = %s;\n", num(res.CardLength))
	fmt.Fprintf(&b, "card_height = %s;\n", num(cfg.CardHeight))
	fmt.Fprintf(&b, "corner_radius = %s;\n", num(res.CornerRadius))
	fmt.Fprintf(&b, "qr_relief = %s;\n", num(cfg.QRRelief))
	fmt.Fprintf(&b, "pixel_size = %s;\n\n", num(res.PixelSize))

	fmt.Fprintf(&b, "// QR Code position\n")
	fmt.Fprintf(&b, "qr_offset_x = %s;\n", num(res.QROffsetX))
	fmt.Fprintf(&b, "qr_offset_y = %s;\n\n", num(res.QROffsetY))

	fmt.Fprintf(&b, "// Bottom text\n")
	fmt.Fprintf(&b, "has_text = %t;\n", res.Bottom.Present)
	fmt.Fprintf(&b, "text_content = %s;\n", Quote(bottomText))
	fmt.Fprintf(&b, "text_size = %s;\n", num(res.FontSize))
	fmt.Fprintf(&b, "text_height = %s;\n", num(cfg.TextHeight))
	fmt.Fprintf(&b, "text_offset_x = %s;\n", num(res.Bottom.X))
	fmt.Fprintf(&b, "text_offset_y = %s;\n", num(res.Bottom.Y))
	fmt.Fprintf(&b, "text_rotation = %d;\n\n", res.Bottom.Rotation)

	fmt.Fprintf(&b, "// Top text\n")
	fmt.Fprintf(&b, "has_text_top = %t;\n", res.Top.Present)
	fmt.Fprintf(&b, "text_content_top = %s;\n", Quote(topText))
	fmt.Fprintf(&b, "text_offset_x_top = %s;\n", num(res.Top.X))
	fmt.Fprintf(&b, "text_offset_y_top = %s;\n", num(res.Top.Y))
	fmt.Fprintf(&b, "text_rotation_top = %d;\n\n", res.Top.Rotation)

	b.WriteString(modules)

	b.WriteString("// Main model\n")
	b.WriteString("difference() {\n")
	b.WriteString("    union() {\n")
	b.WriteString("        rounded_square(card_width, card_length, card_height, corner_radius);\n\n")
	b.WriteString("        translate([qr_offset_x, qr_offset_y, card_height])\n")
	b.WriteString("            qr_pattern();\n\n")
	b.WriteString("        text_label_top();\n")
	b.WriteString("        text_label();\n")
	b.WriteString("    }\n")
	if res.Hole.Present {
		b.WriteString("\n    // Chain hole, through the full card with clearance on both faces\n")
		fmt.Fprintf(&b, "    translate([%s, %s, -1])\n", num(res.Hole.X), num(res.Hole.Y))
		fmt.Fprintf(&b, "        cylinder(d=%s, h=card_height + 2);\n", num(res.Hole.Diameter))
	}
	b.WriteString("}\n\n")

	b.WriteString("// QR Code pattern, one cube per ink cell\n")
	b.WriteString("module qr_pattern() {\n")
	rows := bm.Rows()
	for row := 0; row < rows; row++ {
		// Bitmap row 0 is the top of the image; model Y grows upwards.
		y := float64(rows-1-row) * res.PixelSize
		for col := 0; col < bm.Cols(); col++ {
			if !bm.At(row, col) {
				continue
			}
			x := float64(col) * res.PixelSize
			fmt.Fprintf(&b, "    translate([%.4f, %.4f, 0]) cube([pixel_size, pixel_size, qr_relief]);\n", x, y)
		}
	}
	b.WriteString("}\n")

	return b.Bytes()
}

var modules = `// Rounded card outline: hull of four corner cylinders
module rounded_square(width, length, height, radius) {
    hull() {
        translate([radius, radius, 0])
            cylinder(r=radius, h=height);
        translate([width-radius, radius, 0])
            cylinder(r=radius, h=height);
        translate([radius, length-radius, 0])
            cylinder(r=radius, h=height);
        translate([width-radius, length-radius, 0])
            cylinder(r=radius, h=height);
    }
}

module text_label() {
    if (has_text) {
        translate([text_offset_x, text_offset_y, card_height])
        rotate([0, 0, text_rotation])
        linear_extrude(height=text_height)
        text(text_content, size=text_size, font=` + Quote(card.Font) + `,
             halign="center", valign="bottom", spacing=` + num(TextSpacing) + `);
    }
}

module text_label_top() {
    if (has_text_top) {
        translate([text_offset_x_top, text_offset_y_top, card_height])
        rotate([0, 0, text_rotation_top])
        linear_extrude(height=text_height)
        text(text_content_top, size=text_size, font=` + Quote(card.Font) + `,
             halign="center", valign="bottom", spacing=` + num(TextSpacing) + `);
    }
}

`
