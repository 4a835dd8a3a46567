package io

import (
	"crypto/md5"
	"hash"
	"io"
)

// ChecksumWriter is a writer which hashes everything written through it.
type ChecksumWriter interface {
	io.Writer

	// Sum is the checksum of the bytes written so far.
	Sum() []byte
}

// ChecksumReader is a reader which hashes everything read through it.
type ChecksumReader interface {
	io.Reader

	// Sum is the checksum of the bytes read so far.
	Sum() []byte
}

type md5Writer struct {
	dest io.Writer
	md5  hash.Hash
}

// NewMD5Writer tees writes into dest and an MD5 hash.
func NewMD5Writer(dest io.Writer) ChecksumWriter {
	return &md5Writer{dest: dest, md5: md5.New()}
}

func (mw *md5Writer) Write(buf []byte) (int, error) {
	mw.md5.Write(buf)
	return mw.dest.Write(buf)
}

func (mw *md5Writer) Sum() []byte {
	return mw.md5.Sum(nil)
}

type md5Reader struct {
	source io.Reader
	md5    hash.Hash
}

// NewMD5Reader relays reads from source, feeding an MD5 hash on the way.
func NewMD5Reader(source io.Reader) ChecksumReader {
	return &md5Reader{source: source, md5: md5.New()}
}

func (mr *md5Reader) Read(p []byte) (int, error) {
	n, err := mr.source.Read(p)
	if 0 < n {
		mr.md5.Write(p[:n])
	}
	return n, err
}

func (mr *md5Reader) Sum() []byte {
	return mr.md5.Sum(nil)
}
