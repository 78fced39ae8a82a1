package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/db"
	"github.com/qiangli/dataworks/internal/gitkit"
	"github.com/qiangli/dataworks/internal/log"
	"github.com/qiangli/dataworks/internal/util"
	"github.com/qiangli/dataworks/internal/web"
	"github.com/qiangli/dataworks/internal/web/scrape"
)

func writeJSON(env *Env, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return env.FS.WriteFile(name, data)
}

// B3
func fetchData(ctx context.Context, env *Env, arg string) (any, error) {
	const usage = "URL [output]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 1, usage); err != nil {
		return nil, err
	}
	output := argAt(args, 1, "api-data.json")
	// check the destination before going out
	if _, err := env.FS.Resolve(output); err != nil {
		return nil, err
	}

	body, err := web.Get(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile(output, body); err != nil {
		return nil, err
	}
	return map[string]any{"output": output, "size": len(body)}, nil
}

// B4
func cloneRepo(ctx context.Context, env *Env, arg string) (any, error) {
	const usage = "URL [dir]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 1, usage); err != nil {
		return nil, err
	}
	dir, err := env.FS.Resolve(argAt(args, 1, "repo"))
	if err != nil {
		return nil, err
	}

	if _, err := gitkit.Clone(ctx, args[0], dir, gitkit.AuthParams{}); err != nil {
		return nil, api.Wrap(api.KindExecution, err, "clone")
	}
	marker := fmt.Sprintf("updated by dataworks at %s\n", time.Now().UTC().Format(time.RFC3339))
	hash, err := gitkit.Commit(dir, "dataworks.txt", []byte(marker), "Add dataworks marker")
	if err != nil {
		return nil, api.Wrap(api.KindExecution, err, "commit")
	}
	return map[string]any{"dir": dir, "commit": hash}, nil
}

// B5
func runQuery(ctx context.Context, env *Env, arg string) (any, error) {
	const usage = "DB QUERY [output]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 2, usage); err != nil {
		return nil, err
	}
	dsn, query := args[0], args[1]
	output := argAt(args, 2, "sql-result.json")

	if err := db.CheckReadOnly(query); err != nil {
		return nil, err
	}
	if db.IsFile(dsn) {
		info, err := env.FS.GetFileInfo(dsn)
		if err != nil {
			return nil, err
		}
		dsn = info.Path
	}

	store, err := db.OpenReadOnly(dsn)
	if err != nil {
		return nil, api.Wrap(api.KindExecution, err, "open database")
	}
	defer store.Close()

	rows, err := store.QueryReadOnly(ctx, query)
	if err != nil {
		return nil, api.Wrap(api.KindExecution, err, "query")
	}
	if err := writeJSON(env, output, rows.Rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// B6
func scrapeWebsite(ctx context.Context, env *Env, arg string) (any, error) {
	const usage = "URL [selector] [output]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 1, usage); err != nil {
		return nil, err
	}
	url := args[0]
	selector := argAt(args, 1, "")
	output := argAt(args, 2, "scraped.txt")
	if _, err := env.FS.Resolve(output); err != nil {
		return nil, err
	}

	var text string
	if selector != "" {
		body, err := web.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if text, err = web.Select(string(body), selector); err != nil {
			return nil, err
		}
	} else {
		text, err = scrape.New().Fetch(ctx, url)
		if err != nil {
			log.Debugf("scrape %s: %v, falling back to plain text\n", url, err)
			body, err := web.Get(ctx, url)
			if err != nil {
				return nil, err
			}
			if text, err = web.ExtractTextFromHTML(string(body)); err != nil {
				return nil, err
			}
		}
	}
	if err := env.FS.WriteFile(output, []byte(text)); err != nil {
		return nil, err
	}
	return text, nil
}

// B7
func resizeImage(_ context.Context, env *Env, arg string) (any, error) {
	const usage = "INPUT OUTPUT [width] [quality]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 2, usage); err != nil {
		return nil, err
	}
	input, output := args[0], args[1]
	var width, quality int
	if w := argAt(args, 2, ""); w != "" {
		if width, err = mustInt(w, "width"); err != nil {
			return nil, err
		}
	}
	if q := argAt(args, 3, ""); q != "" {
		if quality, err = mustInt(q, "quality"); err != nil {
			return nil, err
		}
	}
	if width < 0 || quality < 0 || quality > 100 {
		return nil, api.NewBadRequestError("width must be positive and quality between 1 and 100")
	}

	in, err := env.FS.Open(input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var buf bytes.Buffer
	bounds, err := util.Resize(in, &buf, output, uint(width), quality)
	if err != nil {
		return nil, api.Wrap(api.KindBadRequest, err, "resize %s", input)
	}
	if err := env.FS.WriteFile(output, buf.Bytes()); err != nil {
		return nil, err
	}
	return map[string]any{"output": output, "width": bounds.Dx(), "height": bounds.Dy()}, nil
}

// B9
func markdownToHTML(_ context.Context, env *Env, arg string) (any, error) {
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	input := argAt(args, 0, "format.md")
	output := argAt(args, 1, "docs.html")

	data, err := env.FS.ReadFile(input)
	if err != nil {
		return nil, err
	}
	html, err := util.ToHTML(data)
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile(output, []byte(html)); err != nil {
		return nil, err
	}
	return html, nil
}

// B10
func filterCSV(_ context.Context, env *Env, arg string) (any, error) {
	const usage = "CSV FILTER [output]"
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(args, 2, usage); err != nil {
		return nil, err
	}
	output := argAt(args, 2, "filtered.json")

	f, err := env.FS.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := util.FilterCSV(f, args[1])
	if err != nil {
		return nil, api.Wrap(api.KindBadRequest, err, "filter %s", args[0])
	}
	if err := writeJSON(env, output, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
