// Package objectstore signs time-limited object URLs for S3 compatible
// stores.
//
// Two signers implement filetrail.URLSigner:
//
//   - S3Signer: AWS S3 (or any endpoint the AWS SDK can address) via the
//     aws-sdk-go-v2 presign client
//   - MinioSigner: MinIO and other S3 compatible servers via minio-go
//
// Signing is a local computation; neither signer contacts the store to
// produce a URL. New picks a signer from Config:
//
//	signer, err := objectstore.New(ctx, objectstore.Config{
//	    Type:   "s3",
//	    Bucket: "user-uploads",
//	    Region: "us-east-2",
//	})
//	url, err := signer.SignURL(ctx, key, filetrail.IntentWrite, filetrail.SignedURLExpiry)
package objectstore
