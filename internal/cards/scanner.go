// Package cards discovers card image pairs in a folder and inspects
// their pixel dimensions for layout eligibility.
package cards

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// ErrNoCards aborts the run before any document is produced.
var ErrNoCards = errors.New("no card images found: expected filenames ending with 'a'/'b' (card01a.png / card01b.png) or with '[face,<n>]'/'[back,<n>]' (card01[face,001].png / card01[back,001].png)")

var supportedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var (
	// Legacy scheme: stem ends with 'a' (front) or 'b' (back).
	legacyPattern = regexp.MustCompile(`(?i)^(.*)([ab])$`)
	// Bracket scheme: stem ends with '[face,<n>]' or '[back,<n>]'
	// where <n> is the replication count (1-3 digits).
	bracketPattern = regexp.MustCompile(`(?i)^(.*)\[(face|back),(\d{1,3})\]$`)
)

// Scanner finds and pairs card front/back images.
type Scanner struct {
	log *logger.Logger
}

func NewScanner(log *logger.Logger) *Scanner {
	return &Scanner{log: log}
}

type pairEntry struct {
	base       string
	front      string
	back       string
	frontCount int
	backCount  int
}

// FindPairs scans a folder (non-recursive) for card images and groups
// them into ordered pairs. Both naming schemes are matched
// case-insensitively; files named like a logo are never card sides
// because neither pattern matches them. A pair with only a front is
// valid; mismatched face/back replication counts resolve to the face
// count with a warning. The result is sorted by case-insensitive base
// name.
func (s *Scanner) FindPairs(ctx context.Context, dir string) ([]models.CardPair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read card folder %s: %w", dir, err)
	}

	pairs := make(map[string]*pairEntry)
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() || !supportedExt[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		name := entry.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		path := filepath.Join(dir, name)

		if m := bracketPattern.FindStringSubmatch(stem); m != nil {
			base := m[1]
			count, _ := strconv.Atoi(m[3])
			e := lookup(pairs, base)
			if strings.EqualFold(m[2], "face") {
				e.front = path
				e.frontCount = count
			} else {
				e.back = path
				e.backCount = count
			}
			continue
		}

		if m := legacyPattern.FindStringSubmatch(stem); m != nil {
			e := lookup(pairs, m[1])
			if strings.EqualFold(m[2], "a") {
				e.front = path
				e.frontCount = 1
			} else {
				e.back = path
				e.backCount = 1
			}
		}
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})

	var result []models.CardPair
	for _, key := range keys {
		e := pairs[key]
		count := e.frontCount
		if e.front == "" {
			// Back-only entries still produce a slot so the deck
			// order stays stable; the front cell renders empty.
			count = e.backCount
		} else if e.back != "" && e.backCount != e.frontCount {
			s.log.Warn("card %q: face count %d and back count %d differ, using %d",
				e.base, e.frontCount, e.backCount, e.frontCount)
		}
		result = append(result, models.CardPair{
			Name:  e.base,
			Front: e.front,
			Back:  e.back,
			Count: count,
		})
	}

	if len(result) == 0 {
		return nil, ErrNoCards
	}

	s.log.Debug("found %d card pair(s) in %s", len(result), dir)
	return result, nil
}

func lookup(pairs map[string]*pairEntry, base string) *pairEntry {
	if e, ok := pairs[base]; ok {
		return e
	}
	e := &pairEntry{base: base}
	pairs[base] = e
	return e
}

// Expand replicates each pair by its count, preserving deck order.
func Expand(pairs []models.CardPair) []models.CardPair {
	var out []models.CardPair
	for _, p := range pairs {
		for i := 0; i < p.Copies(); i++ {
			out = append(out, p)
		}
	}
	return out
}

// HasBacks reports whether any pair in the deck has a back image.
func HasBacks(pairs []models.CardPair) bool {
	for _, p := range pairs {
		if p.Back != "" {
			return true
		}
	}
	return false
}

// FindLogo returns the configured logo path if it is a usable image
// file, otherwise looks for logo.png/logo.jpg/logo.jpeg next to the
// cards. Empty result means no logo.
func FindLogo(configured, cardDir string) string {
	if configured != "" {
		if info, err := os.Stat(configured); err == nil && !info.IsDir() &&
			supportedExt[strings.ToLower(filepath.Ext(configured))] {
			return configured
		}
		return ""
	}
	for _, name := range []string{"logo.png", "logo.jpg", "logo.jpeg"} {
		candidate := filepath.Join(cardDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
