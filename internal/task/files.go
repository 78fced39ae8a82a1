package task

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/db"
	"github.com/qiangli/dataworks/internal/log"
)

// A1
func runDatagen(ctx context.Context, env *Env, _ string) (any, error) {
	cmdline := env.Datagen
	if cmdline == "" {
		cmdline = DefaultDatagen
	}
	email := env.Email
	if email == "" {
		email = DefaultEmail
	}
	return runCommand(ctx, env.FS.Root(), cmdline, email)
}

// A2
func formatMarkdown(ctx context.Context, env *Env, _ string) (any, error) {
	const input = "format.md"
	p, err := env.FS.Resolve(input)
	if err != nil {
		return nil, err
	}
	if _, err := env.FS.GetFileInfo(input); err != nil {
		return nil, err
	}
	cmdline := env.Formatter
	if cmdline == "" {
		cmdline = DefaultFormatter
	}
	if _, err := runCommand(ctx, env.FS.Root(), cmdline, p); err != nil {
		return nil, err
	}
	return "Markdown formatted", nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"02-Jan-2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// countWeekday counts the lines of data that fall on day. Blank lines are skipped.
func countWeekday(data string, day time.Weekday) (int, error) {
	var count int
	scanner := bufio.NewScanner(strings.NewReader(data))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t, err := parseDate(line)
		if err != nil {
			return 0, api.Wrap(api.KindBadRequest, err, "line %d", n)
		}
		if t.Weekday() == day {
			count++
		}
	}
	return count, scanner.Err()
}

// A3
func countWednesdays(_ context.Context, env *Env, _ string) (any, error) {
	data, err := env.FS.ReadFile("dates.txt")
	if err != nil {
		return nil, err
	}
	count, err := countWeekday(string(data), time.Wednesday)
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile("dates-wednesdays.txt", []byte(strconv.Itoa(count))); err != nil {
		return nil, err
	}
	return count, nil
}

type contactName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// sortContactList orders records by last then first name. Each record is kept
// as is, including fields other than the names.
func sortContactList(data []byte) ([]byte, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, api.Wrap(api.KindBadRequest, err, "contacts must be a JSON array")
	}
	names := make([]contactName, len(records))
	for i, rec := range records {
		if err := json.Unmarshal(rec, &names[i]); err != nil {
			return nil, api.Wrap(api.KindBadRequest, err, "contact %d", i)
		}
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := names[idx[i]], names[idx[j]]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})

	sorted := make([]json.RawMessage, len(records))
	for i, k := range idx {
		sorted[i] = records[k]
	}
	return json.MarshalIndent(sorted, "", "  ")
}

// A4
func sortContacts(_ context.Context, env *Env, _ string) (any, error) {
	data, err := env.FS.ReadFile("contacts.json")
	if err != nil {
		return nil, err
	}
	out, err := sortContactList(data)
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile("contacts-sorted.json", out); err != nil {
		return nil, err
	}
	return "Contacts sorted", nil
}

func firstLine(env *Env, name string) (string, error) {
	f, err := env.FS.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

// A5
func recentLogs(_ context.Context, env *Env, _ string) (any, error) {
	const dir = "logs"
	const max = 10

	files, err := env.FS.Glob(dir, "*.log")
	if err != nil {
		return nil, err
	}

	type entry struct {
		name string
		mod  time.Time
	}
	var entries []entry
	for _, f := range files {
		name := path.Join(dir, f)
		info, err := env.FS.GetFileInfo(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name, info.Modified})
	}
	// newest first, name breaks ties
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].mod.Equal(entries[j].mod) {
			return entries[i].mod.After(entries[j].mod)
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > max {
		entries = entries[:max]
	}

	var lines []string
	for _, e := range entries {
		line, err := firstLine(env, e.name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := env.FS.WriteFile("logs-recent.txt", []byte(strings.Join(lines, "\n"))); err != nil {
		return nil, err
	}
	log.Debugf("recent logs: %v\n", len(lines))
	return "Recent logs extracted", nil
}

// heading returns the text of the first line starting with "# ".
func heading(data string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:]), true
		}
	}
	return "", false
}

// A6
func indexMarkdown(_ context.Context, env *Env, _ string) (any, error) {
	const dir = "docs"

	files, err := env.FS.Glob(dir, "**/*.md")
	if err != nil {
		return nil, err
	}
	index := make(map[string]string)
	for _, f := range files {
		data, err := env.FS.ReadFile(path.Join(dir, f))
		if err != nil {
			return nil, err
		}
		if title, ok := heading(string(data)); ok {
			index[f] = title
		}
	}
	// map keys are marshaled sorted
	out, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile(path.Join(dir, "index.json"), out); err != nil {
		return nil, err
	}
	return "Markdown indexed", nil
}

// A10
func goldTicketSales(ctx context.Context, env *Env, _ string) (any, error) {
	const input = "ticket-sales.db"

	// sqlite would create a missing file
	info, err := env.FS.GetFileInfo(input)
	if err != nil {
		return nil, err
	}
	store, err := db.OpenReadOnly(info.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	v, err := store.Scalar(ctx, "SELECT SUM(units * price) FROM tickets WHERE type = 'Gold'")
	if err != nil {
		return nil, api.Wrap(api.KindExecution, err, "query %s", input)
	}

	var total any = 0
	var text = "0"
	switch n := v.(type) {
	case int64:
		total, text = n, strconv.FormatInt(n, 10)
	case float64:
		total, text = n, strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
	default:
		text = fmt.Sprint(n)
		total = text
	}
	if err := env.FS.WriteFile("ticket-sales-gold.txt", []byte(text)); err != nil {
		return nil, err
	}
	return total, nil
}
