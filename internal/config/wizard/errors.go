package wizard

import "errors"

var (
	errHostRequired   = errors.New("host is required")
	errPortInvalid    = errors.New("port must be a number between 1 and 65535")
	errUserRequired   = errors.New("user is required")
	errPathRequired   = errors.New("path is required")
	errOwnerIDInvalid = errors.New("owner ID must be a numeric Discord user ID")
	errPrefixRequired = errors.New("prefix is required")
	errCronInvalid    = errors.New("cron expression must have 5 fields, e.g. \"0 0 * * *\"")
	errBucketRequired = errors.New("bucket name is required")
)
