package m3u

import (
	"fmt"
	"io"
	"strings"

	"github.com/voyagen/channeldeck/internal/models"
)

// Encode renders channels as M3U text. The #EXTM3U header is always written, so an
// empty input yields "#EXTM3U\n".
//
// Names are written verbatim. A name containing a comma does not survive a
// Decode round trip, since Decode takes the text after the last comma.
func Encode(channels []models.Channel) string {
	var sb strings.Builder
	_ = EncodeTo(&sb, channels)
	return sb.String()
}

// EncodeTo writes the Encode output for channels to w and returns the first write error.
func EncodeTo(w io.Writer, channels []models.Channel) error {
	if _, err := io.WriteString(w, headerTag+"\n"); err != nil {
		return err
	}
	for i := range channels {
		if err := encodeChannel(w, &channels[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeChannel(w io.Writer, ch *models.Channel) error {
	if _, err := io.WriteString(w, extinfTag+"-1"); err != nil {
		return err
	}

	attrs := [...]struct{ key, value string }{
		{attrTvgID, ch.TvgID},
		{attrTvgName, ch.TvgName},
		{attrTvgLogo, ch.Logo},
		{attrGroupTitle, ch.Group},
	}
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, " %s=\"%s\"", a.key, a.value); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, ",%s\n%s\n", ch.Name, ch.URL)
	return err
}
