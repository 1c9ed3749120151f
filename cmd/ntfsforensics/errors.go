package main

import "errors"

var errExtractNeedsOutput = errors.New("at least one of --mft-out, --usnjrnl-out, --logfile-out is required")
