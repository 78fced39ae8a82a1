package task

import (
	"context"
	"os"
	"sort"

	"github.com/qiangli/dataworks/internal/vfs"
)

// LLM is the language model used by the extraction tasks and the
// free text fallback.
type LLM interface {
	Send(ctx context.Context, instruction, input string) (string, error)
	SendImage(ctx context.Context, instruction, mimeType string, image []byte) (string, error)
	Transcribe(ctx context.Context, file *os.File) (string, error)
}

// Env is what a handler may touch.
type Env struct {
	FS  vfs.FileSystem
	LLM LLM

	// command lines, parsed with shell word rules
	Formatter string
	Datagen   string

	// user e-mail passed to the data generator
	Email string
}

const (
	DefaultFormatter = "npx prettier@3.4.2 --write"
	DefaultDatagen   = "uv run datagen.py"
	DefaultEmail     = "user@example.com"
)

type Handler func(ctx context.Context, env *Env, arg string) (any, error)

type Task struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`

	// usage of the optional argument, empty if the task takes none
	Arg string `json:"arg,omitempty" yaml:"arg,omitempty"`

	Run Handler `json:"-" yaml:"-"`
}

var registry = map[string]*Task{
	"A1":  {ID: "A1", Description: "Run the data generator with the user e-mail", Run: runDatagen},
	"A2":  {ID: "A2", Description: "Format format.md with prettier", Run: formatMarkdown},
	"A3":  {ID: "A3", Description: "Count Wednesdays in dates.txt", Run: countWednesdays},
	"A4":  {ID: "A4", Description: "Sort contacts.json by last and first name", Run: sortContacts},
	"A5":  {ID: "A5", Description: "First lines of the ten most recent logs", Run: recentLogs},
	"A6":  {ID: "A6", Description: "Index markdown titles under docs/", Run: indexMarkdown},
	"A7":  {ID: "A7", Description: "Extract the sender address from email.txt", Run: extractEmail},
	"A8":  {ID: "A8", Description: "Extract the card number from credit_card.png", Run: extractCreditCard},
	"A9":  {ID: "A9", Description: "Find the most similar pair in comments.txt", Run: similarComments},
	"A10": {ID: "A10", Description: "Total sales of Gold tickets", Run: goldTicketSales},
	"B3":  {ID: "B3", Description: "Fetch data from an API and save it", Arg: "URL [output]", Run: fetchData},
	"B4":  {ID: "B4", Description: "Clone a git repo and make a commit", Arg: "URL [dir]", Run: cloneRepo},
	"B5":  {ID: "B5", Description: "Run a SELECT query on a SQLite, MySQL or Postgres database", Arg: "DB QUERY [output]", Run: runQuery},
	"B6":  {ID: "B6", Description: "Extract data from a website", Arg: "URL [selector] [output]", Run: scrapeWebsite},
	"B7":  {ID: "B7", Description: "Compress or resize an image", Arg: "INPUT OUTPUT [width] [quality]", Run: resizeImage},
	"B8":  {ID: "B8", Description: "Transcribe audio from an MP3 file", Arg: "[INPUT] [output]", Run: transcribeAudio},
	"B9":  {ID: "B9", Description: "Convert Markdown to HTML", Arg: "[INPUT] [output]", Run: markdownToHTML},
	"B10": {ID: "B10", Description: "Filter a CSV file and return JSON", Arg: "CSV FILTER [output]", Run: filterCSV},
}

// Lookup returns the task registered under id.
func Lookup(id string) (*Task, bool) {
	t, ok := registry[id]
	return t, ok
}

// IDs returns the registered identifiers, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessID(ids[i], ids[j])
	})
	return ids
}

// Tasks returns all tasks in identifier order.
func Tasks() []*Task {
	var tasks []*Task
	for _, id := range IDs() {
		tasks = append(tasks, registry[id])
	}
	return tasks
}

// A2 < A10 < B3
func lessID(a, b string) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
