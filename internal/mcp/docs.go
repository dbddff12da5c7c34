package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `fabtrack turns spreadsheets of composite-fabrication jobs (hulls, decks, panels) into project records with an Engineering Bill of Materials (EBOM).

Workflow:
1) Import: call import_projects with a base64-encoded .xlsx workbook. Every non-blank row of the first sheet becomes one Pending project.
2) Browse: call list_projects, optionally with query (matches project code or customer, case-insensitive). Newest imports come first.
3) Inspect: call get_project with an id from the list.

Notes:
- Missing cells are filled with defaults and reported in the import result; this is not an error.
- If import_projects reports PERSISTENCE_FAILED the write may still have happened. List before retrying.

Docs:
- fabtrack://docs/import-format
- fabtrack://docs/ebom-norms
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "fabtrack://docs/import-format",
		Name:        "docs_import_format",
		Title:       "Spreadsheet import format",
		Description: "Columns read from uploaded workbooks and the defaults used when they are missing.",
		Content: `# Import format

Only the first worksheet is read. The first non-blank row is the header; column names are exact and case-sensitive.

| Column | Meaning | Default when missing or blank |
|---|---|---|
| Code | project code | PRJ-<0..999> (random, may repeat) |
| Customer | customer name | New Client |
| Description | job description | Imported Hull |
| SQM | laminated surface in m² | 10 |

- Other columns are ignored.
- SQM accepts plain numbers and values with a unit suffix such as "20 m2". Values that are negative, unreadable or above 1000000000 use the default.
- Blank rows are skipped. A header-only sheet imports nothing.
- Every imported project starts as Pending with 0% progress, starts on the import date (UTC) and is due 30 days later.
- Projects are identified by id, not by code.
`,
	},
	{
		URI:         "fabtrack://docs/ebom-norms",
		Name:        "docs_ebom_norms",
		Title:       "EBOM norms",
		Description: "How material and labour quantities are derived from surface area.",
		Content: `# EBOM norms

All quantities derive from SQM (square meters of laminated surface):

| Item | Formula | Unit |
|---|---|---|
| resin | round(SQM × 1.5, 1) | kg |
| gelcoat | round(SQM × 0.6, 1) | kg |
| fiber | round(SQM × 2.0, 1) | kg |
| manpower | ceil(SQM / 5) | workers |

Rounding is half away from zero on exact decimals. The EBOM is recomputed whenever a project is read, so it always matches SQM.

Example: SQM 20 gives resin 30, gelcoat 12, fiber 40, manpower 4.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
