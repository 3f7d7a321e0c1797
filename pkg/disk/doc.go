// Package disk provides a uniform file storage contract over the local filesystem
// and S3-compatible object stores.
//
// Every backend implements [Backend]: Write, Read, ReadSize and Delete on
// slash-separated, backend-relative paths. [Disk] is the facade a process builds
// once from [Config] and injects wherever files are stored or served.
//
// # Basic Usage
//
//	d, err := disk.New(ctx, disk.Config{
//		Driver: disk.DriverLocal,
//		Local:  disk.LocalConfig{Directory: "/var/lib/app/uploads"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fd, err := d.Write(ctx, "movies", r, disk.WithContentType("video/x-msvideo"))
//	// fd.Path: movies/{ulid}.avi
//
//	rc, err := d.Read(ctx, fd.Path)
//	if disk.IsFileDoesNotExist(err) {
//		// 404
//	}
//
// # Cloud Storage
//
// DriverCloud selects an object store. ProviderS3 uses the AWS SDK,
// ProviderMinio uses minio-go:
//
//	d, err := disk.New(ctx, disk.Config{
//		Driver: disk.DriverCloud,
//		Cloud: disk.CloudConfig{
//			Provider:  disk.ProviderMinio,
//			Endpoint:  "http://localhost:9000",
//			Bucket:    "uploads",
//			AccessKey: os.Getenv("DISK_CLOUD_ACCESS_KEY"),
//			SecretKey: os.Getenv("DISK_CLOUD_SECRET_KEY"),
//		},
//	})
//
// # File Names
//
// Write generates the file name as {ulid}{ext}. The ULID (48-bit millisecond
// timestamp + 80 random bits) keeps names unique within a namespace; the
// extension comes from WithExtension or the WithContentType MIME type. Use
// WithName to write to a fixed name, replacing any existing file.
//
// # Serving Files
//
//	resp, err := d.HTTPResponse(ctx, "movies/iron-man.avi",
//		disk.WithFilename("movie.avi"),
//		disk.WithForceDownload(),
//	)
//	if err != nil {
//		// disk.ErrFileDoesNotExist -> 404
//	}
//	_ = resp.Write(w)
//
// # Errors
//
// Backends normalize their native errors before returning:
//
//   - [ErrFileDoesNotExist] - the path is absent
//   - [ErrWrite] - write or delete failed
//   - [ErrRead] - read failed for a reason other than a missing file
//   - [ErrInvalidPath] - empty, absolute or escaping path
package disk
