package reports

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/changedesk/internal/models"
)

const delim = "---"

// header is the YAML frontmatter block of an archived report.
type header struct {
	Kind        string    `yaml:"kind"`
	Subject     string    `yaml:"subject,omitempty"`
	Title       string    `yaml:"title"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Failed      bool      `yaml:"failed,omitempty"`
}

// render serialises a report as Markdown with YAML frontmatter.
func render(r models.Report) ([]byte, error) {
	fm, err := yaml.Marshal(header{
		Kind:        r.Kind,
		Subject:     r.Subject,
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt.UTC(),
		Failed:      r.Failed,
	})
	if err != nil {
		return nil, fmt.Errorf("reports: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(fm)
	buf.WriteString(delim + "\n\n")
	if r.Title != "" {
		buf.WriteString("# " + r.Title + "\n\n")
	}
	buf.WriteString(strings.TrimSpace(r.Body))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// parse splits frontmatter from the body. Files without a valid header
// come back with the whole content as body and a title taken from the
// first H1 heading.
func parse(data []byte) models.Report {
	var r models.Report
	h, body, ok := splitFrontmatter(data)
	if ok {
		r.Kind, r.Subject, r.Title = h.Kind, h.Subject, h.Title
		r.GeneratedAt, r.Failed = h.GeneratedAt, h.Failed
	}
	r.Body = stripTitle(body, r.Title)
	if r.Title == "" {
		r.Title = firstHeading(body)
	}
	return r
}

func splitFrontmatter(data []byte) (header, string, bool) {
	var h header
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return h, string(data), false
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return h, string(data), false
	}
	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	if err := yaml.Unmarshal(block, &h); err != nil {
		return header{}, string(data), false
	}
	return h, body, true
}

func stripTitle(body, title string) string {
	if title == "" {
		return strings.TrimSpace(body)
	}
	body = strings.TrimSpace(body)
	return strings.TrimSpace(strings.TrimPrefix(body, "# "+title))
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
