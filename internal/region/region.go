// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package region decodes the region tag embedded in a session token and
// resolves it to the per-region endpoints, identifiers, and origins the
// rest of the pipeline needs. It is pure and does no I/O.
package region

import "strings"

// Tag is one of the recognized region prefixes. The empty tag means "cn",
// the default when a token carries no prefix.
type Tag string

const (
	TagCN Tag = ""
	TagUS Tag = "us"
	TagHK Tag = "hk"
	TagJP Tag = "jp"
	TagSG Tag = "sg"
)

// internationalTags is the closed set of prefixes that mark a token as
// international. Anything else (including no prefix at all) is cn.
var internationalTags = map[Tag]bool{
	TagUS: true,
	TagHK: true,
	TagJP: true,
	TagSG: true,
}

// Info is the derived, immutable record produced from a single session
// token. It never outlives the request it was resolved for.
type Info struct {
	Region          Tag
	IsInternational bool
	ImagexHost      string
	Origin          string
	Referer         string
	AWSRegion       string
	AssistantID     string
}

// assistantIDs holds the five constants observed for assistant id, keyed by
// region tag. cn uses its own constant; the four international tags share
// the international-region table below for everything else but keep
// distinct assistant ids per the upstream's backend identity split.
var assistantIDs = map[Tag]string{
	TagCN: "513695",
	TagUS: "513696",
	TagHK: "513697",
	TagJP: "513698",
	TagSG: "513699",
}

var imagexHosts = map[Tag]string{
	TagCN: "imagex.bytedanceapi.com",
	TagUS: "imagex-us.byteplusapi.com",
	TagHK: "imagex-ap.byteplusapi.com",
	TagJP: "imagex-ap.byteplusapi.com",
	TagSG: "imagex-ap.byteplusapi.com",
}

var origins = map[Tag]string{
	TagCN: "https://jimeng.jianying.com",
	TagUS: "https://dreamina.capcut.com",
	TagHK: "https://dreamina.capcut.com",
	TagJP: "https://dreamina.capcut.com",
	TagSG: "https://dreamina.capcut.com",
}

var awsRegions = map[Tag]string{
	TagCN: "cn-north-1",
	TagUS: "us-east-1",
	TagHK: "ap-southeast-1",
	TagJP: "ap-northeast-1",
	TagSG: "ap-southeast-1",
}

// Resolve splits token on its first '-' looking for a recognized prefix. A
// recognized prefix strips off and marks the token international; anything
// else (no '-', or an unrecognized prefix) leaves the whole token as the
// secret and resolves to cn. The stripped secret is returned alongside so
// callers don't need to re-derive it.
func Resolve(token string) (Info, string) {
	tag := TagCN
	secret := token
	if idx := strings.IndexByte(token, '-'); idx > 0 {
		candidate := Tag(token[:idx])
		if internationalTags[candidate] {
			tag = candidate
			secret = token[idx+1:]
		}
	}

	return Info{
		Region:          tag,
		IsInternational: internationalTags[tag],
		ImagexHost:      imagexHosts[tag],
		Origin:          origins[tag],
		Referer:         origins[tag] + "/",
		AWSRegion:       awsRegions[tag],
		AssistantID:     assistantIDs[tag],
	}, secret
}

// FormatAuth renders the Authorization header value from the stripped
// secret that Resolve returns: "Bearer " + prefix + rawSessionId, where
// prefix is "{region}-" for international tokens and empty for cn.
func FormatAuth(info Info, rawSessionID string) string {
	if !info.IsInternational {
		return "Bearer " + rawSessionID
	}
	return "Bearer " + string(info.Region) + "-" + rawSessionID
}
