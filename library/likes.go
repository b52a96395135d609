package library

import "wiboard-complete/core"

// IsLiked reports whether the likes list holds an entry for url.
func IsLiked(likes []core.LikedImage, url string) bool {
	for _, l := range likes {
		if l.URL == url {
			return true
		}
	}
	return false
}

// Like returns likes with entry appended, unless an entry with the same url
// is already present. The input slice is not modified.
func Like(likes []core.LikedImage, entry core.LikedImage) []core.LikedImage {
	if IsLiked(likes, entry.URL) {
		return likes
	}
	out := make([]core.LikedImage, len(likes), len(likes)+1)
	copy(out, likes)
	return append(out, entry)
}

// Unlike returns likes with any entry matching url filtered out. A url that
// was never liked returns likes unchanged.
func Unlike(likes []core.LikedImage, url string) []core.LikedImage {
	if !IsLiked(likes, url) {
		return likes
	}
	out := make([]core.LikedImage, 0, len(likes))
	for _, l := range likes {
		if l.URL != url {
			out = append(out, l)
		}
	}
	return out
}
