package domain

import "time"

// DefaultPerPage is the page size used when a list request does not specify one.
const DefaultPerPage = 20

// MaxPerPage caps the page size accepted from clients.
const MaxPerPage = 100

// MaxWhatsAppRecipients caps the recipients of a single broadcast.
const MaxWhatsAppRecipients = 100

// MaxCommentLength is the longest comment body accepted.
const MaxCommentLength = 2000

// DefaultCommentLimit is the number of comments returned to a polling client.
const DefaultCommentLimit = 50

// MaxUploadSize is the largest media file accepted for upload (25 MiB).
const MaxUploadSize = 25 << 20

// DefaultCurrency is used for ticket checkout when the tenant does not override it.
const DefaultCurrency = "usd"

// MaskedSecret replaces stored secrets in responses.
const MaskedSecret = "********"

// TokenExpiryLeeway is subtracted from backend token expiry before reuse.
const TokenExpiryLeeway = 30 * time.Second
