// Package upload validates multipart/form-data requests against a declared schema
// and streams accepted files into a disk.
//
// Parts are consumed once, in order, without buffering the request. Every file is
// checked for its field, count and MIME type before its first byte is stored, and
// its size is enforced while it streams. Validation is fail-fast: the first
// rejection stops processing and deletes whatever this request already stored.
//
// # Basic Usage
//
//	v, err := upload.New(d, upload.Schema{
//		Files: map[string]upload.FileField{
//			"avatar": {
//				Required:     true,
//				MaxSize:      2 << 20,
//				AllowedTypes: []string{"image/*"},
//				SaveTo:       "avatars",
//			},
//		},
//		Fields: map[string]upload.TextField{
//			"caption": {MaxLength: 280},
//		},
//	})
//
//	res, err := v.Validate(r)
//	if errors.Is(err, upload.ErrValidation) {
//		// 400
//	}
//	avatar := res.File("avatar") // avatar.Descriptor.Path: avatars/{ulid}.png
//
// # Middleware
//
//	r.With(v.Middleware).Post("/avatar", func(w http.ResponseWriter, r *http.Request) {
//		res, _ := upload.FromContext(r.Context())
//		// ...
//	})
//
// Fields without SaveTo are kept in memory in File.Data.
//
// # Content Types
//
// By default the Content-Type header of each part is trusted. WithContentSniffing
// detects the type from the first 512 bytes instead. Parts without a type are
// treated as application/octet-stream.
//
// # Errors
//
// Rejections are *ValidationError values matching ErrValidation. Their Code is one of:
//
//   - not_multipart, malformed_body, body_too_large - the request itself
//   - unknown_field, required - form shape
//   - invalid_mime, file_too_large, too_many_files - file constraints
//   - field_too_long - text constraints
//
// Storage failures are returned unchanged.
package upload
