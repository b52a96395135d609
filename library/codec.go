package library

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
)

// DecodeCollections parses a persisted collections document. Anything that is
// not a well-formed array of collections normalizes to the empty set: a parse
// or shape failure is logged and treated as if the key had never been
// written, never surfaced to the caller. Entries without a name and images
// without a url are dropped; duplicate names merge into the first occurrence
// and duplicate urls within a collection keep the first entry, so the model
// invariants hold no matter what was on disk.
func DecodeCollections(data []byte) []core.Collection {
	if len(data) == 0 {
		return []core.Collection{}
	}

	var raw []core.Collection
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.WithError(err).Warn("Malformed collections state, falling back to empty")
		return []core.Collection{}
	}

	out := make([]core.Collection, 0, len(raw))
	for _, c := range raw {
		if c.Name == "" {
			logrus.Warn("Dropping collection without a name from persisted state")
			continue
		}
		for _, img := range c.Images {
			if img.URL == "" {
				logrus.WithField("collection", c.Name).Warn("Dropping image without a url from persisted state")
				continue
			}
			if img.Title == "" {
				img.Title = "Untitled"
			}
			out = SaveToCollection(out, c.Name, img)
		}
	}
	return out
}

// DecodeLikes parses a persisted likes document with the same fail-open
// contract as DecodeCollections: malformed input becomes an empty list.
func DecodeLikes(data []byte) []core.LikedImage {
	if len(data) == 0 {
		return []core.LikedImage{}
	}

	var raw []core.LikedImage
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.WithError(err).Warn("Malformed likes state, falling back to empty")
		return []core.LikedImage{}
	}

	out := make([]core.LikedImage, 0, len(raw))
	for _, l := range raw {
		if l.URL == "" {
			logrus.Warn("Dropping liked entry without a url from persisted state")
			continue
		}
		out = Like(out, l)
	}
	return out
}
