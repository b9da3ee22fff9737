package device

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"time"

	"github.com/nfnt/resize"

	"github.com/dlnasrv/dlna/upnp"
)

// iconSpec is one entry of the standard DLNA device-icon size matrix a
// MediaServer is expected to advertise (spec §6's device description).
type iconSpec struct {
	Width, Height, Depth int
}

var iconSizes = []iconSpec{
	{120, 120, 24},
	{48, 48, 24},
	{32, 32, 8},
}

// renderedIcon is one generated icon: its advertised metadata plus the
// already-encoded image bytes served over HTTP.
type renderedIcon struct {
	upnp.Icon
	bytes []byte
}

// buildIcons resizes a single source image down to the standard DLNA icon
// matrix using nfnt/resize, encoding each size back out as PNG.
func buildIcons(source []byte) ([]renderedIcon, error) {
	if len(source) == 0 {
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("device: decoding source icon: %w", err)
	}
	icons := make([]renderedIcon, 0, len(iconSizes))
	for _, spec := range iconSizes {
		resized := resize.Resize(uint(spec.Width), uint(spec.Height), img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("device: encoding icon: %w", err)
		}
		icons = append(icons, renderedIcon{
			Icon: upnp.Icon{
				Mimetype: "image/png",
				Width:    spec.Width,
				Height:   spec.Height,
				Depth:    spec.Depth,
			},
			bytes: buf.Bytes(),
		})
	}
	return icons, nil
}

func iconPath(i int) string { return fmt.Sprintf("/deviceIcon/%d", i) }

func (dev *Device) registerIconRoutes() {
	for i := range dev.icons {
		i := i
		dev.mux.HandleFunc(iconPath(i), func(w http.ResponseWriter, r *http.Request) {
			icon := dev.icons[i]
			w.Header().Set("Content-Type", icon.Mimetype)
			http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(icon.bytes))
		})
	}
}
