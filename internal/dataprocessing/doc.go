// Package dataprocessing loads warehouse slot inventory workbooks into
// cleaned, immutable tables ready for aggregation.
//
// # Architecture
//
// The package has two components:
//
//  1. Loader: sniffs the spreadsheet container (XLSX or legacy XLS),
//     decodes the first sheet and applies the cleaning rules the WMS
//     export requires.
//  2. ParseCache: a bounded, content-addressed cache so identical file
//     bytes are parsed once, with singleflight deduplication for
//     concurrent identical uploads.
//
// # Cleaning rules
//
// Cleaning is strict about the two columns aggregation depends on and
// permissive about everything else:
//
//   - header cells are trimmed; columns with empty headers are dropped
//   - "Altura" and "Estado Contentor" must both be present
//   - status values lose surrounding quotes and spaces
//   - heights accept the decimal comma ("0,75" parses as 0.75)
//   - rows whose height is not exactly 0.75 or 1.50 are dropped
//
// Any other column survives untouched for the raw detail view and the
// CSV export.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	result, err := loader.Load(ctx, "inventario.xlsx", raw)
//	if err != nil {
//	    var missing *dataprocessing.MissingColumnsError
//	    if errors.As(err, &missing) {
//	        // missing.Columns names exactly what the sheet lacks
//	    }
//	}
//
// Tables returned by the loader are shared by the cache and the report
// store; treat them as immutable.
package dataprocessing
