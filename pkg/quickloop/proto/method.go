// Package proto holds the HTTP/1.0 wire-level constants shared by the
// request parser, the response writer, and the route trie: methods,
// status lines, and the handful of content types the server emits on
// its own behalf.
package proto

// Method identifies an HTTP request method. The zero value, MethodUnknown,
// is what the parser returns for anything outside the closed set below —
// there is no open-ended method string anywhere in this engine.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGET
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
)

var methodBytesTable = [...][]byte{
	MethodUnknown: nil,
	MethodGET:     []byte("GET"),
	MethodHEAD:    []byte("HEAD"),
	MethodPOST:    []byte("POST"),
	MethodPUT:     []byte("PUT"),
	MethodDELETE:  []byte("DELETE"),
	MethodCONNECT: []byte("CONNECT"),
	MethodOPTIONS: []byte("OPTIONS"),
	MethodTRACE:   []byte("TRACE"),
}

var methodStringTable = [...]string{
	MethodUnknown: "",
	MethodGET:     "GET",
	MethodHEAD:    "HEAD",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodCONNECT: "CONNECT",
	MethodOPTIONS: "OPTIONS",
	MethodTRACE:   "TRACE",
}

// ParseMethod maps a request-line method token to a Method. It never
// allocates: the switch is keyed on length first, then bytes, the same
// dispatch shape used throughout this engine's wire-level parsing.
func ParseMethod(b []byte) Method {
	switch len(b) {
	case 3:
		switch {
		case b[0] == 'G' && b[1] == 'E' && b[2] == 'T':
			return MethodGET
		case b[0] == 'P' && b[1] == 'U' && b[2] == 'T':
			return MethodPUT
		}
	case 4:
		switch {
		case b[0] == 'H' && b[1] == 'E' && b[2] == 'A' && b[3] == 'D':
			return MethodHEAD
		case b[0] == 'P' && b[1] == 'O' && b[2] == 'S' && b[3] == 'T':
			return MethodPOST
		}
	case 5:
		if b[0] == 'T' && b[1] == 'R' && b[2] == 'A' && b[3] == 'C' && b[4] == 'E' {
			return MethodTRACE
		}
	case 6:
		if b[0] == 'D' && b[1] == 'E' && b[2] == 'L' && b[3] == 'E' && b[4] == 'T' && b[5] == 'E' {
			return MethodDELETE
		}
	case 7:
		switch {
		case b[0] == 'C' && b[1] == 'O' && b[2] == 'N' && b[3] == 'N' && b[4] == 'E' && b[5] == 'C' && b[6] == 'T':
			return MethodCONNECT
		case b[0] == 'O' && b[1] == 'P' && b[2] == 'T' && b[3] == 'I' && b[4] == 'O' && b[5] == 'N' && b[6] == 'S':
			return MethodOPTIONS
		}
	}
	return MethodUnknown
}

// String renders the canonical wire representation, or "" for MethodUnknown.
func (m Method) String() string {
	if int(m) >= len(methodStringTable) {
		return ""
	}
	return methodStringTable[m]
}

// Bytes returns the canonical wire representation, or nil for MethodUnknown.
func (m Method) Bytes() []byte {
	if int(m) >= len(methodBytesTable) {
		return nil
	}
	return methodBytesTable[m]
}

// Valid reports whether m is one of the eight methods the engine recognizes.
func (m Method) Valid() bool {
	return m > MethodUnknown && int(m) < len(methodStringTable)
}
