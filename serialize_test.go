package easel

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// buildRichPicture exercises every serializable event variant.
func buildRichPicture(t *testing.T) *Picture {
	t.Helper()
	p, err := NewPicture(48, 48)
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		create := p.Stamp(NewBufferCreateEvent(id, Transparent, true, 1)).(*BufferCreateEvent)
		_, err := p.AddBuffer(create)
		require.NoError(t, err)
	}

	brush := NewBrushEvent(Red, 0.75, 1, 5, BlendNormal)
	brush.AddPoint(10, 10, 1)
	brush.AddPoint(20, 14, 0.5)
	require.NoError(t, p.PushEvent(1, p.Stamp(brush)))

	scatter := NewScatterEvent(Green, 1, 0.5, 3, BlendMultiply)
	scatter.AddPoint(30, 30, 1)
	scatter.AddPoint(12, 36, 0.25)
	require.NoError(t, p.PushEvent(2, p.Stamp(scatter)))
	scatterSeq := scatter.AuthorSeq

	grad := NewGradientEvent(Pt(0, 0), Pt(48, 48), Blue, 0.5, BlendScreen)
	require.NoError(t, p.PushEvent(2, p.Stamp(grad)))

	// Opaque pixels keep the PNG payload byte-stable across re-encodes.
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 200, B: 10, A: 255})
	require.NoError(t, p.PushEvent(1, p.Stamp(NewImageImportEvent(img, Pt(5, 5)))))

	// A hide on the scatter, a move, and an undone removal.
	require.NoError(t, p.PushEvent(2, p.Stamp(NewHideEvent(p.AuthorID(), scatterSeq))))
	require.NoError(t, p.MoveBuffer(0, 1))
	require.NoError(t, p.RemoveBuffer(1))
	removeSeq := p.FindLatestBySession(p.AuthorID())
	require.NoError(t, p.UndoBySessionEvent(p.AuthorID(), removeSeq))

	require.NoError(t, p.MergeBuffer(1, 2, 0.5))
	return p
}

func TestSerializeRoundTripIdempotent(t *testing.T) {
	p1 := buildRichPicture(t)

	s1, err := p1.SerializeString()
	require.NoError(t, err)

	p2, err := ParseString(s1, 1)
	require.NoError(t, err)

	s2, err := p2.SerializeString()
	require.NoError(t, err)
	require.Equal(t, s1, s2, "serialize(parse(log)) must reproduce the log")

	// The parsed picture's full replays reproduce the live pixels.
	img1, err := p1.Composite()
	require.NoError(t, err)
	img2, err := p2.Composite()
	require.NoError(t, err)
	require.True(t, bytes.Equal(img1.Pix, img2.Pix), "composites must match")
}

func TestSerializeVisibilityRoundTrip(t *testing.T) {
	p1, err := NewPicture(16, 16)
	require.NoError(t, err)
	for _, id := range []int{1, 2} {
		create := p1.Stamp(NewBufferCreateEvent(id, Transparent, true, 1)).(*BufferCreateEvent)
		_, err := p1.AddBuffer(create)
		require.NoError(t, err)
	}
	p1.BufferByID(1).SetVisible(false)

	s, err := p1.SerializeString()
	require.NoError(t, err)

	p2, err := ParseString(s, 1)
	require.NoError(t, err)
	require.False(t, p2.BufferByID(1).Visible(), "hidden layer must stay hidden after a round trip")
	require.True(t, p2.BufferByID(2).Visible())
}

func TestParseVersion1DefaultsVisible(t *testing.T) {
	// Version 1 buffer records predate the visibility flag.
	log := strings.Join([]string{
		"easel 1 16 16 1",
		"buffer 1 0 0 0 0 1 1 1 1 1",
		"create 1 1 0 1 0 0 0 0 1 1",
		"",
	}, "\n")
	p, err := ParseString(log, 1)
	require.NoError(t, err)
	require.True(t, p.BufferByID(1).Visible())
}

func TestSerializeGolden(t *testing.T) {
	p, err := NewPicture(32, 24)
	require.NoError(t, err)
	create := p.Stamp(NewBufferCreateEvent(7, RGB8(10, 20, 30), true, 1)).(*BufferCreateEvent)
	_, err = p.AddBuffer(create)
	require.NoError(t, err)

	brush := NewBrushEvent(Red, 0.5, 1, 4, BlendNormal)
	brush.AddPoint(3, 4, 1)
	brush.AddPoint(6.5, 8, 0.5)
	require.NoError(t, p.PushEvent(7, p.Stamp(brush)))

	grad := NewGradientEvent(Pt(0, 0), Pt(32, 0), Blue, 0.25, BlendMultiply)
	require.NoError(t, p.PushEvent(7, p.Stamp(grad)))
	require.NoError(t, p.UndoBySessionEvent(1, grad.AuthorSeq))

	s, err := p.SerializeString()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "picture_log", []byte(s))
}

func TestParseSkipsUnknownRecords(t *testing.T) {
	log := strings.Join([]string{
		"easel 1 16 16 1",
		"buffer 1 0 0 0 0 1 1 1 2 3",
		"create 1 1 0 1 0 0 0 0 1 1",
		"sparkle 1 2 0 some future payload",
		"brush 1 3 0 255 0 0 255 1 1 4 normal 0 1 8 8 1",
		"",
	}, "\n")

	p, err := ParseString(log, 1)
	require.NoError(t, err)
	b := p.BufferByID(1)
	require.NotNil(t, b)
	require.Equal(t, 2, b.EventCount(), "the unknown record is dropped, the rest survives")
	require.NotZero(t, b.Bitmap().PixelRGBA(8, 8).A, "the brush after the bad record still paints")
}

func TestParseSkipsBufferWithoutCreate(t *testing.T) {
	log := strings.Join([]string{
		"easel 1 16 16 1",
		"buffer 1 0 0 0 0 1 1 1 1 1",
		"brush 1 1 0 255 0 0 255 1 1 4 normal 0 1 8 8 1",
		"",
	}, "\n")
	p, err := ParseString(log, 1)
	require.NoError(t, err)
	require.Equal(t, 0, p.BufferCount())
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want error
	}{
		{"wrong magic", "nope 1 8 8 0\n", ErrBadHeader},
		{"short header", "easel 1 8\n", ErrBadHeader},
		{"future version", "easel 99 8 8 0\n", ErrUnsupportedVersion},
		{"empty input", "", ErrBadHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.log, 1)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseScalesGeometry(t *testing.T) {
	p1, err := NewPicture(16, 16)
	require.NoError(t, err)
	create := p1.Stamp(NewBufferCreateEvent(1, Transparent, true, 1)).(*BufferCreateEvent)
	_, err = p1.AddBuffer(create)
	require.NoError(t, err)
	brush := NewBrushEvent(Red, 1, 1, 4, BlendNormal)
	brush.AddPoint(5, 6, 1)
	require.NoError(t, p1.PushEvent(1, p1.Stamp(brush)))

	s, err := p1.SerializeString()
	require.NoError(t, err)

	p2, err := ParseString(s, 2)
	require.NoError(t, err)
	require.Equal(t, 32, p2.Width())
	require.Equal(t, 32, p2.Height())

	parsed, ok := p2.BufferByID(1).EventAt(1).(*BrushEvent)
	require.True(t, ok)
	require.Equal(t, 8.0, parsed.Radius)
	require.Equal(t, 10.0, parsed.Points()[0].X)
	require.Equal(t, 12.0, parsed.Points()[0].Y)
}

func TestParseRejectsNonPositiveScale(t *testing.T) {
	p1, err := NewPicture(16, 16)
	require.NoError(t, err)
	s, err := p1.SerializeString()
	require.NoError(t, err)

	// Scale zero falls back to native size.
	p2, err := ParseString(s, 0)
	require.NoError(t, err)
	require.Equal(t, 16, p2.Width())
}

func TestSerializeUnknownEventFails(t *testing.T) {
	_, err := serializeEvent(&badEvent{})
	require.Error(t, err)
}

// badEvent is an event variant serialization has no record layout for.
type badEvent struct{ EventBase }

func (*badEvent) Type() EventType           { return EventType(99) }
func (*badEvent) BoundingBox(int, int) Rect { return Rect{} }
func (*badEvent) Scale(float64)             {}
