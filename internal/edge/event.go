package edge

// Event is a CloudFront Lambda@Edge invocation event.
type Event struct {
	Records []Record `json:"Records"`
}

// Record is one CloudFront record. Origin-request events carry exactly one.
type Record struct {
	CF CF `json:"cf"`
}

// CF holds the distribution config and the request being processed.
type CF struct {
	Config  Config  `json:"config"`
	Request Request `json:"request"`
}

// Config identifies the distribution and event that triggered the function.
type Config struct {
	DistributionDomainName string `json:"distributionDomainName"`
	DistributionID         string `json:"distributionId"`
	EventType              string `json:"eventType"`
	RequestID              string `json:"requestId"`
}

// HeaderValue is one header entry. Key keeps the original case while the
// map key in Headers is lower case.
type HeaderValue struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Headers maps lower-cased header names to their entries.
type Headers map[string][]HeaderValue

// Get returns the first value under name, which must be lower case.
func (h Headers) Get(name string) string {
	if values := h[name]; len(values) > 0 {
		return values[0].Value
	}
	return ""
}

// Set replaces the entries under name with a single value.
func (h Headers) Set(name, value string) {
	h[name] = []HeaderValue{{Key: name, Value: value}}
}

// Request is the request CloudFront is about to send to the origin. The
// function returns it, possibly modified.
type Request struct {
	ClientIP    string  `json:"clientIp,omitempty"`
	Headers     Headers `json:"headers"`
	Method      string  `json:"method"`
	QueryString string  `json:"querystring"`
	URI         string  `json:"uri"`
	Origin      *Origin `json:"origin,omitempty"`
	Body        *Body   `json:"body,omitempty"`
}

// Origin is either a custom origin or an S3 origin.
type Origin struct {
	Custom *CustomOrigin `json:"custom,omitempty"`
	S3     *S3Origin     `json:"s3,omitempty"`
}

// CustomOrigin is an HTTP origin such as the API Gateway endpoint.
type CustomOrigin struct {
	CustomHeaders    Headers  `json:"customHeaders"`
	DomainName       string   `json:"domainName"`
	KeepaliveTimeout int      `json:"keepaliveTimeout"`
	Path             string   `json:"path"`
	Port             int      `json:"port"`
	Protocol         string   `json:"protocol"`
	ReadTimeout      int      `json:"readTimeout"`
	SSLProtocols     []string `json:"sslProtocols"`
}

// S3Origin is a bucket origin.
type S3Origin struct {
	AuthMethod    string  `json:"authMethod"`
	CustomHeaders Headers `json:"customHeaders"`
	DomainName    string  `json:"domainName"`
	Path          string  `json:"path"`
	Region        string  `json:"region"`
}

// Body is the request body when the distribution includes it.
type Body struct {
	InputTruncated bool   `json:"inputTruncated"`
	Action         string `json:"action"`
	Encoding       string `json:"encoding"`
	Data           string `json:"data"`
}
