package common

// UnknownStr labels values outside their enum range in String methods.
const UnknownStr = "unknown"
