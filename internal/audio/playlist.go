package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/handiism/suno-downloader/internal/io"
	"github.com/handiism/suno-downloader/internal/model"
)

// PlaylistCreator generates playlist files in various formats.
//
// Entries are the audio file names of the playlist's tracks, relative to
// the playlist file, which is written next to them.
//
// Example:
//
//	// Create M3U playlist with extended info
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	pl := model.NewPlaylist("suno", outputDir, model.PlaylistFormatM3U, tracks)
//	err := creator.WritePlaylist(pl)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:184,Night Owl - Night Drive
//	// Night Drive.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format playlists are generated in.
func (p *PlaylistCreator) Format() model.PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content.
func (p *PlaylistCreator) CreatePlaylist(pl *model.Playlist) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(pl)
	case model.PlaylistFormatWPL:
		return p.createWPL(pl)
	case model.PlaylistFormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

// WritePlaylist generates the playlist and writes it to pl.Path.
func (p *PlaylistCreator) WritePlaylist(pl *model.Playlist) error {
	if err := ioutils.WriteFileAtomic(pl.Path, []byte(p.CreatePlaylist(pl))); err != nil {
		return fmt.Errorf("failed to write playlist %s: %w", filepath.Base(pl.Path), err)
	}
	return nil
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(pl *model.Playlist) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range pl.Tracks {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", int(track.Duration), displayTitle(track)))
		}
		sb.WriteString(filepath.Base(track.AudioPath) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(pl *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range pl.Tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, filepath.Base(track.AudioPath)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, displayTitle(track)))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, int(track.Duration)))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(pl.Tracks)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(pl *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(pl.Name)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range pl.Tracks {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(filepath.Base(track.AudioPath))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune playlist, WPL plus per-entry metadata.
func (p *PlaylistCreator) createZPL(pl *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(pl.Name)))
	sb.WriteString("    <meta name=\"Generator\" content=\"suno-downloader\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Tracks)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range pl.Tracks {
		duration := time.Duration(track.Duration * float64(time.Second))
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(track.AudioPath)),
			escapeXML(pl.Name),
			escapeXML(track.Title),
			escapeXML(track.Artist()),
			duration.Milliseconds()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// displayTitle returns "Artist - Title", or just the title without an artist.
func displayTitle(track *model.Track) string {
	if artist := track.Artist(); artist != "" {
		return artist + " - " + track.Title
	}
	return track.Title
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
