package store

import "github.com/jackc/pgx/v5/pgtype"

// encodeArgs converts the application-level map[string]string job argument
// shape into the pgtype.Hstore wire type. hstore itself stores nullable
// text values; job args are never intentionally null, but the conversion
// still goes through *string to match the column's declared type.
func encodeArgs(args map[string]string) pgtype.Hstore {
	h := make(pgtype.Hstore, len(args))
	for k, v := range args {
		v := v
		h[k] = &v
	}
	return h
}

// decodeArgs converts a scanned pgtype.Hstore back into a plain
// map[string]string, treating a null hstore value as an empty string
// (job arguments are never meaningfully null).
func decodeArgs(h pgtype.Hstore) map[string]string {
	args := make(map[string]string, len(h))
	for k, v := range h {
		if v == nil {
			args[k] = ""
			continue
		}
		args[k] = *v
	}
	return args
}
