package fetch

const MaxBodyBytes = maxBodyBytes
