package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/geziefer/docchat/internal/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|glob>...",
	Short: "Ingest documents into the index",
	Long: `Ingest one or more documents. Arguments may be plain paths or
doublestar globs; each matched file is extracted, chunked, embedded and
indexed. Re-ingesting a filename supersedes the previous version.

Examples:
  docchat ingest notes.txt
  docchat ingest "docs/**/*.md"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched")
	}

	c, err := buildCore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer c.close()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	var ingested, failed int
	var failures []string

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		_, err = c.pipeline.Ingest(cmd.Context(), filepath.Base(path), contentType, int64(len(data)), data)
		if err != nil {
			failed++
			if domain.IsExtraction(err) {
				failures = append(failures, fmt.Sprintf("%s: no text could be extracted", path))
			} else {
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			}
			bar.Add(1)
			continue
		}

		ingested++
		bar.Add(1)
	}

	fmt.Printf("Ingested %d of %d files\n", ingested, len(files))
	for _, f := range failures {
		fmt.Printf("  failed: %s\n", f)
	}
	if failed > 0 && ingested == 0 {
		return fmt.Errorf("all %d files failed", failed)
	}
	return nil
}

// expandArgs resolves each argument as a doublestar glob, falling back to a
// literal path, and returns the de-duplicated sorted file list.
func expandArgs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("cannot read %s: %w", m, err)
			}
			if info.IsDir() {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}
