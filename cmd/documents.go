package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var _documentsCmdOpts struct {
	classification string
}

var classifications = map[string]netilion.DocumentClassification{
	"undefined":    netilion.ClassificationUndefined,
	"public":       netilion.ClassificationPublic,
	"internal":     netilion.ClassificationInternal,
	"confidential": netilion.ClassificationConfidential,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage documents and their JSON attachments",

	PersistentPreRunE: clientPreRunE,
}

var documentsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classification, ok := classifications[_documentsCmdOpts.classification]
		if !ok {
			return fmt.Errorf("bad classification %s", _documentsCmdOpts.classification)
		}

		return withClient(func(c netilion.NetilionAPI) error {
			doc, err := c.PostDocument(args[0], classification, netilion.StatusUndefined)
			if err != nil {
				return err
			}
			return printJSON(doc)
		})
	},
}

var documentsAttachCmd = &cobra.Command{
	Use:   "attach ASSET-ID DOCUMENT-ID",
	Short: "Link a document to an asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("asset or document", args)
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.PostAssetDocument(ids[0], ids[1])
		})
	},
}

func readJSONFile(fileName string) (interface{}, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	var content interface{}
	if err := swag.ReadJSON(data, &content); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", fileName)
	}

	return content, nil
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload DOCUMENT-ID FILE",
	Short: "Attach a JSON file to a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("document", args[0])
		if err != nil {
			return err
		}

		content, err := readJSONFile(args[1])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			att, err := c.UploadJSONAttachment(content, filepath.Base(args[1]), id)
			if err != nil {
				return err
			}
			return printJSON(att)
		})
	},
}

var documentsReplaceCmd = &cobra.Command{
	Use:   "replace ATTACHMENT-ID FILE",
	Short: "Replace the content of an attachment with a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("attachment", args[0])
		if err != nil {
			return err
		}

		content, err := readJSONFile(args[1])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.PatchJSONAttachment(content, id, filepath.Base(args[1]))
		})
	},
}

var documentsDownloadCmd = &cobra.Command{
	Use:   "download ATTACHMENT-ID",
	Short: "Print the content of a JSON attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("attachment", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			var content interface{}
			if err := c.DownloadJSONAttachment(id, &content); err != nil {
				return err
			}
			return printJSON(content)
		})
	},
}

func init() {
	documentsCreateCmd.Flags().StringVar(&_documentsCmdOpts.classification, "classification", "undefined",
		"undefined, public, internal or confidential")

	documentsCmd.AddCommand(documentsCreateCmd, documentsAttachCmd, documentsUploadCmd, documentsReplaceCmd, documentsDownloadCmd)
	rootCmd.AddCommand(documentsCmd)
}
