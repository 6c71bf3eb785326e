// Package errors provides classified error primitives used across walletbuilder.
//
// A ClassifiedError carries a category (config, validation, build, bundle,
// archive, ...), a severity and structured context. The CLI adapter turns a
// classified error into the process exit code and the message printed on
// stderr:
//
//	err := errors.ConfigError("missing environment variables").
//		WithContext("missing", []string{"TON_WALLET_VERSION"}).
//		Build()
//
// Configuration and validation errors exit with code 1, step failures with 11.
package errors
