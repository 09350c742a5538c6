// Package progress carries per-candidate download events from the executor
// to whoever renders them.
package progress

// Kind is derived from the event fields.
type Kind uint8

const (
	KindStarted Kind = iota
	KindChunk
	KindFinished
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindStarted:
		return "started"
	case KindChunk:
		return "chunk"
	case KindFinished:
		return "finished"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one step of a candidate download. URL is the correlation key.
type Event struct {
	SubredditName  string   `json:"subreddit_name"`
	Profiles       []string `json:"profiles"`
	DownloadLength int64    `json:"download_length"`
	ChunkLength    int64    `json:"chunk_length"`
	Finished       bool     `json:"finished"`
	Error          string   `json:"error,omitempty"`
	URL            string   `json:"url"`
}

// NewEvent returns a started event. downloadLength is 0 when the server does not tell.
func NewEvent(subreddit string, profiles []string, url string, downloadLength int64) Event {
	return Event{
		SubredditName:  subreddit,
		Profiles:       profiles,
		DownloadLength: downloadLength,
		URL:            url,
	}
}

func (e Event) WithChunk(n int64) Event {
	e.ChunkLength = n
	return e
}

func (e Event) WithFinished() Event {
	e.ChunkLength = 0
	e.Finished = true
	return e
}

// WithError marks the event as terminal as well.
func (e Event) WithError(err error) Event {
	e = e.WithFinished()
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

func (e Event) Kind() Kind {
	switch {
	case e.Error != "":
		return KindError
	case e.Finished:
		return KindFinished
	case e.ChunkLength > 0:
		return KindChunk
	default:
		return KindStarted
	}
}
