package proto

import "strings"

// Response is a decoded wire response line.
type Response struct {
	OK   bool
	Data string // Empty for the literal "OK" success response
	Err  ErrorCode
}

// DecodeResponse decodes a raw response line. Leading and trailing
// whitespace is stripped; an "ERROR:<CODE>" line decodes as failure,
// anything else as success with the trimmed line as data. The literal
// "OK" success carries no data.
func DecodeResponse(raw string) Response {
	line := strings.TrimSpace(raw)
	if code, ok := strings.CutPrefix(line, "ERROR:"); ok && code != "" {
		return Response{Err: ErrorCode(code)}
	}
	if line == SuccessResponse {
		return Response{OK: true}
	}
	return Response{OK: true, Data: line}
}

// ParseStatus parses a STATUS response pattern into per-relay states.
// The wire convention places relay 8 in the leftmost position, so relay n
// is the bit at string index 7-(n-1).
func ParseStatus(data string) (map[int]bool, error) {
	if !IsValidPattern(data) {
		return nil, validationErrorf("invalid status data: %q", data)
	}
	states := make(map[int]bool, RelayCount)
	for n := MinRelay; n <= MaxRelay; n++ {
		states[n] = data[RelayCount-n] == '1'
	}
	return states, nil
}

// BoardInfo is a parsed INFO response. Fields absent from a short response
// are left empty.
type BoardInfo struct {
	BoardName string
	Version   string
	Channels  string
	UID       string
}

// ParseInfo parses an INFO response of the form
// "WAVESHARE-PICO-RELAY-B,V1.0,8CH,UID:XXXXXXXXXXXXXXXX". Truncated
// responses yield a partial BoardInfo.
func ParseInfo(data string) BoardInfo {
	var info BoardInfo
	parts := strings.Split(data, ",")
	if len(parts) >= 1 {
		info.BoardName = parts[0]
	}
	if len(parts) >= 2 {
		info.Version = parts[1]
	}
	if len(parts) >= 3 {
		info.Channels = parts[2]
	}
	if len(parts) >= 4 {
		if uid, ok := strings.CutPrefix(parts[3], "UID:"); ok {
			info.UID = uid
		}
	}
	return info
}

// ParseHelp parses a HELP response into the list of command names.
func ParseHelp(data string) []string {
	list, ok := strings.CutPrefix(data, "Commands: ")
	if !ok {
		return nil
	}
	return strings.Split(list, ",")
}
