package domain

import "errors"

var ErrUnsupportedFileType = errors.New("unsupported file type")
