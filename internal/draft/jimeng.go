// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package draft

import (
	"regexp"
	"strconv"
)

// multiImagePattern recognizes jimeng-4.0 prompts asking for a sequence of
// images (a story, a picture book, or an explicit "N张" count).
var multiImagePattern = regexp.MustCompile(`连续|绘本|故事|(\d+)张`)

// defaultMultiImageCount is used when the prompt matches the pattern
// without a parseable count (e.g. "连续" alone, or "绘本" without "N张").
const defaultMultiImageCount = 4

// DetectMultiImage inspects prompt for the jimeng-4.0 multi-image triggers
// and returns the expected item count if one is recognized. ok is false
// when the prompt does not match, in which case count is meaningless.
func DetectMultiImage(prompt string) (count int, ok bool) {
	matches := multiImagePattern.FindAllStringSubmatch(prompt, -1)
	if matches == nil {
		return 0, false
	}
	for _, m := range matches {
		if m[1] == "" {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	return defaultMultiImageCount, true
}
