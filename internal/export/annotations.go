package export

import (
	"bytes"
	"fmt"
	"image"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/signature"
)

// Annotation flag bit 3: print the annotation with the page.
const flagPrint = 4

// noteSize is the side of a comment's note icon, in points.
const noteSize = 24.0

const highlightOpacity = 0.3

var noteColor = [3]float64{1, 0.976, 0.765}

// pdfRect converts a normalized top-left rectangle into default user space
// of a page with the given box.
func pdfRect(r domain.Rect, box *types.Rectangle) (llx, lly, urx, ury float64) {
	w, h := box.Width(), box.Height()
	llx = box.LL.X + r.X*w
	ury = box.UR.Y - r.Y*h
	urx = llx + r.Width*w
	lly = ury - r.Height*h
	return llx, lly, urx, ury
}

func numbers(vs ...float64) types.Array {
	arr := make(types.Array, 0, len(vs))
	for _, v := range vs {
		arr = append(arr, types.Float(v))
	}
	return arr
}

func baseDict(a domain.Annotation, subtype string, llx, lly, urx, ury float64) types.Dict {
	return types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name(subtype),
		"Rect":    numbers(llx, lly, urx, ury),
		"NM":      types.StringLiteral(a.ID),
		"F":       types.Integer(flagPrint),
	}
}

func annotationDict(ctx *model.Context, a domain.Annotation, box *types.Rectangle) (types.Dict, error) {
	switch a.Type {
	case domain.AnnotationHighlight, domain.AnnotationUnderline:
		return markupDict(a, box)
	case domain.AnnotationComment:
		return noteDict(a, box)
	case domain.AnnotationSignature:
		return stampDict(ctx, a, box)
	}
	return nil, fmt.Errorf("unknown annotation type %q", a.Type)
}

func markupDict(a domain.Annotation, box *types.Rectangle) (types.Dict, error) {
	rgb, err := parseColor(a.Color)
	if err != nil {
		return nil, err
	}
	llx, lly, urx, ury := pdfRect(a.Bounds(), box)

	subtype := "Highlight"
	if a.Type == domain.AnnotationUnderline {
		subtype = "Underline"
	}
	d := baseDict(a, subtype, llx, lly, urx, ury)
	d["QuadPoints"] = numbers(llx, ury, urx, ury, llx, lly, urx, lly)
	d["C"] = numbers(rgb[:]...)
	if a.Type == domain.AnnotationHighlight {
		d["CA"] = types.Float(highlightOpacity)
	}
	return d, nil
}

func noteDict(a domain.Annotation, box *types.Rectangle) (types.Dict, error) {
	llx, _, _, ury := pdfRect(a.Bounds(), box)
	d := baseDict(a, "Text", llx, ury-noteSize, llx+noteSize, ury)

	contents, err := types.EscapedUTF16String(a.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}
	d["Contents"] = types.StringLiteral(*contents)
	d["Name"] = types.Name("Comment")
	d["C"] = numbers(noteColor[:]...)
	return d, nil
}

// stampDict places the signature image as a Stamp annotation whose normal
// appearance draws the image over the annotation rectangle.
func stampDict(ctx *model.Context, a domain.Annotation, box *types.Rectangle) (types.Dict, error) {
	raw, _, err := signature.DecodeDataURL(a.ImageDataURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	imgRef, err := imageXObject(ctx, img)
	if err != nil {
		return nil, err
	}

	llx, lly, urx, ury := pdfRect(a.Bounds(), box)
	w, h := urx-llx, ury-lly
	content := "q " + ftoa(w) + " 0 0 " + ftoa(h) + " 0 0 cm /Im0 Do Q"
	form, err := ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return nil, err
	}
	form.Dict["Type"] = types.Name("XObject")
	form.Dict["Subtype"] = types.Name("Form")
	form.Dict["BBox"] = numbers(0, 0, w, h)
	form.Dict["Resources"] = types.Dict{
		"XObject": types.Dict{"Im0": *imgRef},
	}
	if err := form.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode appearance: %w", err)
	}
	formRef, err := ctx.IndRefForNewObject(*form)
	if err != nil {
		return nil, err
	}

	d := baseDict(a, "Stamp", llx, lly, urx, ury)
	d["AP"] = types.Dict{"N": *formRef}
	return d, nil
}

// imageXObject writes img as an 8 bit DeviceRGB image with its alpha channel
// as a soft mask.
func imageXObject(ctx *model.Context, img image.Image) (*types.IndirectRef, error) {
	b := img.Bounds()
	rgb := make([]byte, 0, b.Dx()*b.Dy()*3)
	alpha := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, al := img.At(x, y).RGBA()
			rgb = append(rgb, unpremultiply(r, al), unpremultiply(g, al), unpremultiply(bl, al))
			alpha = append(alpha, byte(al>>8))
		}
	}

	smaskRef, err := imageStream(ctx, alpha, b.Dx(), b.Dy(), "DeviceGray", nil)
	if err != nil {
		return nil, err
	}
	return imageStream(ctx, rgb, b.Dx(), b.Dy(), "DeviceRGB", smaskRef)
}

func imageStream(ctx *model.Context, buf []byte, w, h int, colorSpace string, smask *types.IndirectRef) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(buf)
	if err != nil {
		return nil, err
	}
	sd.Dict["Type"] = types.Name("XObject")
	sd.Dict["Subtype"] = types.Name("Image")
	sd.Dict["Width"] = types.Integer(w)
	sd.Dict["Height"] = types.Integer(h)
	sd.Dict["ColorSpace"] = types.Name(colorSpace)
	sd.Dict["BitsPerComponent"] = types.Integer(8)
	if smask != nil {
		sd.Dict["SMask"] = *smask
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return ctx.IndRefForNewObject(*sd)
}

func unpremultiply(c, a uint32) byte {
	if a == 0 {
		return 0
	}
	return byte((c * 0xffff / a) >> 8)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// parseColor converts #RRGGBB into PDF colour components.
func parseColor(c string) ([3]float64, error) {
	var rgb [3]float64
	if !domain.ValidColor(c) {
		return rgb, fmt.Errorf("%w: %q", domain.ErrInvalidColor, c)
	}
	for i := range rgb {
		v, err := strconv.ParseUint(c[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return rgb, fmt.Errorf("%w: %q", domain.ErrInvalidColor, c)
		}
		rgb[i] = float64(v) / 255
	}
	return rgb, nil
}
