package profile

import (
	"path/filepath"
	"strings"

	"github.com/dlnasrv/dlna/internal/stream"
)

// extensionEntry is one row of the built-in extension table (spec §4.B's
// "extension-table fallback profiler").
type extensionEntry struct {
	mime  string
	class MediaClass
	dlnaPN string
}

var extensionTable = map[string]extensionEntry{
	".mp4":  {"video/mp4", ClassAV, ""},
	".m4v":  {"video/mp4", ClassAV, ""},
	".mkv":  {"video/x-matroska", ClassAV, ""},
	".avi":  {"video/x-msvideo", ClassAV, ""},
	".mov":  {"video/quicktime", ClassAV, ""},
	".mpg":  {"video/mpeg", ClassAV, "MPEG_PS_PAL"},
	".mpeg": {"video/mpeg", ClassAV, "MPEG_PS_PAL"},
	".ts":   {"video/mpeg", ClassAV, ""},
	".webm": {"video/webm", ClassAV, ""},

	".mp3":  {"audio/mpeg", ClassAudio, "MP3"},
	".flac": {"audio/x-flac", ClassAudio, ""},
	".wav":  {"audio/wav", ClassAudio, ""},
	".ogg":  {"audio/ogg", ClassAudio, ""},
	".m4a":  {"audio/mp4", ClassAudio, "AAC_ISO"},
	".wma":  {"audio/x-ms-wma", ClassAudio, ""},

	".jpg":  {"image/jpeg", ClassImage, "JPEG_LRG"},
	".jpeg": {"image/jpeg", ClassImage, "JPEG_LRG"},
	".png":  {"image/png", ClassImage, "PNG_LRG"},
	".gif":  {"image/gif", ClassImage, ""},
	".bmp":  {"image/bmp", ClassImage, ""},
}

// ExtensionProfiler is the universal fallback profiler (spec §4.B step 2's
// last-resort consultation): it never fails to recognise a file whose
// extension is in the table, but extracts no Properties/Metadata at all.
type ExtensionProfiler struct{}

func (ExtensionProfiler) SupportedMIMETypes() []string { return nil }

func (ExtensionProfiler) GuessMediaProfile(s stream.Stream) (Guess, bool) {
	hinter, ok := s.(interface{ Path() (string, bool) })
	if !ok {
		return Guess{}, false
	}
	path, ok := hinter.Path()
	if !ok {
		return Guess{}, false
	}
	ext := strings.ToLower(filepath.Ext(path))
	entry, ok := extensionTable[ext]
	if !ok {
		return Guess{}, false
	}
	return Guess{Profile: Profile{
		ID:                entry.dlnaPN,
		MIME:              entry.mime,
		Label:             strings.TrimPrefix(ext, "."),
		MediaClass:        entry.class,
		Extension:         ext,
		SupportsByteRange: true,
	}}, true
}

func (ExtensionProfiler) GetMediaProfile(id string) (Profile, bool) {
	for ext, entry := range extensionTable {
		if entry.dlnaPN == id && id != "" {
			return Profile{
				ID: id, MIME: entry.mime, MediaClass: entry.class,
				Extension: ext, SupportsByteRange: true,
			}, true
		}
	}
	return Profile{}, false
}

// SniffExtension implements stream.ExtensionSniffer by consulting the same
// extension table used for profiling, so the file backend's Stream.MIMEType
// stays consistent with what GuessMediaProfile would report.
func (ExtensionProfiler) SniffExtension(filename string) (string, bool) {
	entry, ok := extensionTable[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", false
	}
	return entry.mime, true
}
