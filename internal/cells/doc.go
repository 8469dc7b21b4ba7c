// Package cells implements spreadsheet-style addressing of rectangular cell
// regions.
//
// Coordinates are zero-based internally. A negative coordinate is relative
// to the end of the sheet it is resolved against: -1 denotes the last row or
// column, -2 the one before it, and so on. The textual notation follows the
// familiar A1 style, where `*` stands for "last row" or "last column":
//
//	A1      a single cell
//	B*      the last cell of column B
//	A1:C*   columns A to C, from the first to the last row
//
// Ranges must be resolved against concrete extents with Range.Resolve before
// they can be used to index into a grid.
package cells
