package domain

// KeyPrefix namespaces every propdex key and index in the database.
const KeyPrefix = "propdex:"
