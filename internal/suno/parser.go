package suno

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/suno-downloader/internal/model"
	"github.com/handiism/suno-downloader/internal/suno/dto"
)

// Strategy names one way of locating the clip JSON inside a page.
type Strategy string

const (
	// StrategyScriptTag finds the <script> whose text mentions "audio_url"
	// and cuts the clip object out of it, stopping at "persona".
	StrategyScriptTag Strategy = "script-tag"

	// StrategyNextData reads the __NEXT_DATA__ script and follows
	// props.pageProps.clip.
	StrategyNextData Strategy = "next-data"

	// StrategyPersona cuts "clip":{...},"persona": out of the raw page.
	StrategyPersona Strategy = "persona"

	// StrategyIsPublic cuts "clip":{... is_public":<bool>} out of the page,
	// matching across newlines. Works on audio and video pages and on
	// browser-rendered HTML.
	StrategyIsPublic Strategy = "is-public"
)

// DefaultStrategies is the order strategies are tried in when none are configured.
var DefaultStrategies = []Strategy{StrategyScriptTag, StrategyNextData, StrategyPersona, StrategyIsPublic}

var (
	personaRe  = regexp.MustCompile(`"clip":(\{.*?\}),"persona"`)
	isPublicRe = regexp.MustCompile(`(?s)"clip":(\{.*?is_public":\w+\})`)
)

// ParseStrategies converts configured names into strategies, keeping order.
func ParseStrategies(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return DefaultStrategies, nil
	}

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		s := Strategy(strings.ToLower(strings.TrimSpace(name)))
		switch s {
		case StrategyScriptTag, StrategyNextData, StrategyPersona, StrategyIsPublic:
			strategies = append(strategies, s)
		default:
			return nil, fmt.Errorf("unknown extraction strategy %q", name)
		}
	}
	return strategies, nil
}

// Extraction is the result of parsing one song page.
type Extraction struct {
	Track    *model.Track
	Strategy Strategy
}

// Parser extracts the clip record from Suno song pages.
//
// Suno embeds the clip as a JSON object inside the page, but where and how
// has changed many times. The Parser tries a list of strategies in order
// and returns the first clip that decodes.
//
// Example usage:
//
//	parser := NewParser()
//	html, _ := client.GetString(ctx, "https://suno.com/song/7cce556d-...")
//
//	track, err := parser.ParseSongPage(html)
//	if errors.Is(err, ErrClipNotFound) {
//	    // markup changed; dump the page for inspection
//	}
type Parser struct {
	strategies []Strategy
}

// NewParser creates a Parser trying the given strategies in order.
// With no arguments DefaultStrategies is used.
func NewParser(strategies ...Strategy) *Parser {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Parser{strategies: strategies}
}

// ParseSongPage extracts the clip record from a song page.
//
// Returns an error wrapping ErrClipNotFound if no strategy finds a clip.
// A fragment that is found but is not valid JSON is reported as ErrDecode
// joined to ErrClipNotFound when no later strategy succeeds.
func (p *Parser) ParseSongPage(html string) (*model.Track, error) {
	ext, err := p.Extract(html)
	if err != nil {
		return nil, err
	}
	return ext.Track, nil
}

// Extract is ParseSongPage that also reports which strategy matched.
func (p *Parser) Extract(html string) (*Extraction, error) {
	page := &pageText{raw: html}

	var lastErr error
	for _, strategy := range p.strategies {
		clip, err := p.run(strategy, page)
		if err != nil {
			lastErr = err
			continue
		}
		if clip == nil {
			continue
		}
		return &Extraction{Track: clip.ToTrack(""), Strategy: strategy}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrClipNotFound, lastErr)
	}
	return nil, ErrClipNotFound
}

// run applies one strategy. A nil clip and nil error means "no match".
func (p *Parser) run(strategy Strategy, page *pageText) (*dto.JSONClip, error) {
	switch strategy {
	case StrategyScriptTag:
		doc := page.document()
		if doc == nil {
			return nil, nil
		}
		script := findScriptContaining(doc, `"audio_url"`)
		if script == "" {
			return nil, nil
		}
		return decodeMatch(strategy, personaRe, script)

	case StrategyNextData:
		doc := page.document()
		if doc == nil {
			return nil, nil
		}
		return decodeNextData(doc)

	case StrategyPersona:
		return decodeMatch(strategy, personaRe, page.raw)

	case StrategyIsPublic:
		return decodeMatch(strategy, isPublicRe, page.raw)
	}

	return nil, nil
}

// pageText holds the raw page and a lazily parsed DOM.
type pageText struct {
	raw    string
	doc    *goquery.Document
	parsed bool
}

func (pt *pageText) document() *goquery.Document {
	if !pt.parsed {
		pt.parsed = true
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(pt.raw))
		if err == nil {
			pt.doc = doc
		}
	}
	return pt.doc
}

// findScriptContaining returns the text of the first <script> containing needle.
func findScriptContaining(doc *goquery.Document, needle string) string {
	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, needle) {
			found = text
			return false
		}
		return true
	})
	return found
}

// decodeMatch runs re over text and decodes the first capture group.
func decodeMatch(strategy Strategy, re *regexp.Regexp, text string) (*dto.JSONClip, error) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil, nil
	}

	var clip dto.JSONClip
	if err := json.Unmarshal([]byte(m[1]), &clip); err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrDecode, strategy, err)
	}
	return &clip, nil
}

type nextData struct {
	Props struct {
		PageProps struct {
			Clip *dto.JSONClip `json:"clip"`
		} `json:"pageProps"`
	} `json:"props"`
}

// decodeNextData reads props.pageProps.clip from the __NEXT_DATA__ script.
func decodeNextData(doc *goquery.Document) (*dto.JSONClip, error) {
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return nil, nil
	}

	var data nextData
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrDecode, StrategyNextData, err)
	}
	return data.Props.PageProps.Clip, nil
}
