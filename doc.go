// Package filetrail provides an authenticated file-metadata service backed by
// an object store and a relational metadata database.
//
// Clients never upload or download through filetrail itself. Instead they ask
// for a presigned URL that delegates a single storage operation (read or
// write) to the object store, while filetrail keeps a per-user record of each
// file and, for GPS tracks, a small summary of the track.
//
// # Key Components
//
//   - FileService: Combines the record repository, the URL signer and storage
//     key generation into the three user-facing operations
//   - UserFileRepo: Interface for record persistence (PostgreSQL, SQLite)
//   - URLSigner: Interface for presigning storage URLs (S3, MinIO)
//   - TokenVerifier: Verifies bearer tokens issued by an OpenID Connect provider
//     against a KeySet and extracts the authenticated subject
//   - Permit: Strong-parameter filter for client supplied objects
//
// # Ownership
//
// Every record carries the subject of the token that created it. Reads are
// filtered by that subject at the query level, so a record owned by someone
// else is indistinguishable from one that does not exist.
//
// # Example Usage
//
//	service := filetrail.NewFileService(repo, signer, filetrail.ServiceConfig{})
//
//	created, err := service.Create(ctx, subject, filetrail.NewUserFile{Filename: "ride.gpx"})
//	// created.UploadURL is valid for one hour
//
//	url, err := service.FetchURL(ctx, subject, created.ID)
//
// See the http package for the REST API and the database packages for the
// metadata backends.
package filetrail
