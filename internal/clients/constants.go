package clients

import "time"

const (
	USER_AGENT             = "sentiboard/0.1 (+https://github.com/spacesedan/sentiboard)"
	DEFAULT_HTTP_TIMEOUT   = 30 * time.Second
	MAX_ERROR_BODY_PREVIEW = 200
)
