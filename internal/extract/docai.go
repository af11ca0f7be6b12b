package extract

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// DocAIExtractor runs resumes through a Document AI OCR processor and applies
// the shared contact-detail heuristics to the recognized text. Used when a
// processor is configured; handles scanned documents the byte-scan cannot.
type DocAIExtractor struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

func NewDocAIExtractor(ctx context.Context, projectID, location, processorID string) (*DocAIExtractor, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, errors.Wrap(err, "docai: create client")
	}

	return &DocAIExtractor{
		client:        client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

func (e *DocAIExtractor) Extract(ctx context.Context, fileName, mimeType string, data []byte) (*Fields, error) {
	resp, err := e.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: e.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "docai: process document")
	}

	return FieldsFromText(fileName, resp.GetDocument().GetText())
}

func (e *DocAIExtractor) Close() error {
	return e.client.Close()
}
