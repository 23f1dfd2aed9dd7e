package domain

// BoostSentinel is the placeholder media path meaning "no local media; this
// record points at an existing Mastodon status and is only ever boosted".
const BoostSentinel = "mastodon.png"

// Author identifies who created an image. Both fields may be empty.
type Author struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

// ImageRecord is one curated image in the database.
// Source is the canonical origin URL (or identifier) and is unique across the
// store. Posted holds the URL of the most recent publish; once set it is only
// ever overwritten, never cleared.
type ImageRecord struct {
	Source      string   `json:"source" validate:"required"`
	ImagePaths  []string `json:"image_paths" validate:"required,min=1,max=4,dive,required"`
	Author      Author   `json:"author"`
	Description string   `json:"description,omitempty"`
	Links       []string `json:"links,omitempty"`
	NSFW        bool     `json:"nsfw"`
	CW          string   `json:"cw,omitempty"`
	Posted      string   `json:"posted,omitempty"`
}

// ImageDB is the on-disk document shape.
type ImageDB struct {
	Images []ImageRecord `json:"images"`
}

// BoostOnly reports whether the record carries no local media.
func (r *ImageRecord) BoostOnly() bool {
	return len(r.ImagePaths) > 0 && r.ImagePaths[0] == BoostSentinel
}

// WasPosted reports whether the record has been published at least once.
func (r *ImageRecord) WasPosted() bool {
	return r.Posted != ""
}
