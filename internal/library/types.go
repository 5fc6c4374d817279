package library

// VideoExts are the extensions accepted into a media pool.
var VideoExts = []string{".mp4", ".mov", ".avi", ".webm", ".m4v"}

type Video struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Rejected is a file that matched by extension but whose content signature
// identifies something other than a video.
type Rejected struct {
	Path     string `json:"path"`
	Detected string `json:"detected"`
}

// Pool is the ordered, immutable list of videos a run cycles through.
type Pool struct {
	Dir      string     `json:"dir"`
	Videos   []Video    `json:"videos"`
	Rejected []Rejected `json:"rejected,omitempty"`
}

func (p *Pool) Paths() []string {
	ret := make([]string, len(p.Videos))
	for i, v := range p.Videos {
		ret[i] = v.Path
	}
	return ret
}

func (p *Pool) Len() int {
	return len(p.Videos)
}
