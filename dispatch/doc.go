// Package dispatch maps a file type to the function that decodes its payload.
//
// A Table holds one or more entries per format.FileType. Each entry carries a
// DecodeFunc and optional constraints: a fixed payload size, an embedded type
// tag that must agree with the requested type, and the range of profile
// versions the layout applies to. Dispatching a type that has no entry, or
// TypeNone, returns errs.ErrUnknownTag instead of guessing a layout.
//
// Decoders never resolve references. A field that names another record is
// built with NewReference, which registers the reference as pending with the
// load context's registry; the loader fills it when that key is published.
//
//	table := dispatch.NewTable()
//	_ = table.Register(format.TypeSound, decodeSound, dispatch.WithVersions(2, 3))
//
//	func decodeSound(dc *dispatch.Context, data []byte) (any, error) {
//		r := dc.Reader(data)
//		rate, err := r.U32()
//		...
//		bank := dispatch.NewReference[*Bank](dc, key, format.TypeRaw)
//	}
package dispatch
