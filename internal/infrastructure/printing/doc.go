// Package printing renders ledger documents to PDF with gofpdf.
//
// The only document today is the distribution statement: the period
// summary, the reserve balance and one line per owner share.
//
// Example usage:
//
//	renderer := printing.NewStatementRenderer(printing.StatementConfig{
//	    Title: "Ops Console",
//	})
//	if err := renderer.Render(w, dist, time.Now()); err != nil {
//	    return err
//	}
package printing
