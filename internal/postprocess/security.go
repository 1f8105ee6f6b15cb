// Package postprocess annotates completed file records. These stages consume
// only the merged result's public fields, never strategy internals.
package postprocess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/srcmeta/srcmeta/internal/pipeline"
)

// contentPattern flags one category of sensitive content.
type contentPattern struct {
	name string
	re   *regexp.Regexp
}

// SecurityScanner scans raw file content for obviously sensitive material and
// records findings on the file record.
type SecurityScanner struct {
	patterns []contentPattern
}

// NewSecurityScanner builds a scanner with the default pattern set.
func NewSecurityScanner() *SecurityScanner {
	return &SecurityScanner{
		patterns: []contentPattern{
			{"private_key", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
			{"aws_access_key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
			{"hardcoded_password", regexp.MustCompile(`(?i)\b(?:password|passwd|secret)\s*[:=]\s*["'][^"']{4,}["']`)},
			{"bearer_token", regexp.MustCompile(`(?i)\bauthorization\s*[:=]\s*["']?bearer\s+\S+`)},
		},
	}
}

// Process appends a finding per matched pattern with its first line number.
func (s *SecurityScanner) Process(content []byte, record *pipeline.FileRecord) {
	if record.Result == nil {
		return
	}
	text := string(content)
	for _, p := range s.patterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		line := 1 + strings.Count(text[:loc[0]], "\n")
		record.Result.SecurityFindings = append(record.Result.SecurityFindings,
			fmt.Sprintf("%s at line %d", p.name, line))
	}
}
