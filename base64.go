package hdrhistogram

import "encoding/base64"

// Base64Encode frames data with the standard alphabet (A-Z a-z 0-9 + /) and
// '=' padding — exactly encoding/base64.StdEncoding's contract.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode inverts Base64Encode. It rejects input whose length is not a
// positive multiple of 4 (the stdlib decoder alone only rejects
// non-multiples of 4, not the "at least 4" lower bound).
func Base64Decode(s string) ([]byte, error) {
	if len(s) < 4 || len(s)%4 != 0 {
		return nil, wrap(ErrInvalidArgument, "Base64Decode: length must be a positive multiple of 4")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, wrap(ErrInvalidArgument, "Base64Decode: "+err.Error())
	}
	return data, nil
}
