package api

// MaxImportBodySize caps checklist import request bodies (8 MB).
const MaxImportBodySize = 8 << 20
