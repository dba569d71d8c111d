package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/geziefer/docchat/internal/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage ingested documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer c.close()

	docs := c.registry.ListAll()
	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })

	fmt.Printf("%-36s  %-30s  %-24s  %s\n", "ID", "FILENAME", "CONTENT TYPE", "CHUNKS")
	for _, d := range docs {
		fmt.Printf("%-36s  %-30s  %-24s  %d\n", d.ID, d.Filename, d.ContentType, d.ChunkCount)
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer c.close()

	err = c.pipeline.Delete(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Printf("Document %s not found.\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %s.\n", args[0])
	return nil
}
