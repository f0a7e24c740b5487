package domain

// GeneratedPost is the unit carried through the back half of the pipeline:
// one concept ordinal paired with its caption and the outcome of its image
// render. A post is never deleted; a failed render is recorded on ImageError
// and ImageURL stays empty.
type GeneratedPost struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Caption     string `json:"caption,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageError  string `json:"imageError,omitempty"`
}

// Rendered reports whether the post carries a usable image.
func (p GeneratedPost) Rendered() bool {
	return p.ImageURL != "" && p.ImageError == ""
}

// Asset kinds accepted by the publish stage.
const (
	AssetKindImage = "image"
	AssetKindVideo = "video"
)

// PublishResult is the per-asset outcome of the publish stage. One result
// exists per confirmed publication; results are never synthesized for assets
// whose vendor response lacked an id or permalink.
type PublishResult struct {
	AssetID   int    `json:"assetId"`
	Kind      string `json:"kind"`
	ContentID string `json:"contentId"`
	Permalink string `json:"permalink"`
}

// PublishSummary is the final aggregate of a publish fan-out. Total counts
// attempted submissions, Completed counts confirmed successes.
type PublishSummary struct {
	Success   bool            `json:"success"`
	Posts     []PublishResult `json:"posts"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
}

// RenderJob lifecycle states as reported by the generation vendor.
const (
	RenderPending   = "PENDING"
	RenderRunning   = "RUNNING"
	RenderSucceeded = "SUCCEEDED"
	RenderFailed    = "FAILED"
)

// ValidatedRef is a reference image URL that passed the media validator,
// together with the probed metadata. Only validated refs may be attached to a
// render job.
type ValidatedRef struct {
	URL    string
	MIME   string
	Bytes  int64
	Width  int
	Height int
}
