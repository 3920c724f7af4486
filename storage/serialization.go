// Copyright 2026 Telepress Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/telepress/telepress/core"
)

// Binary codecs for badger values, written by hand with mus-go primitives.
// Field order is the wire format; append new fields at the end only.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, sizeArticle(article))
	marshalArticle(article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := unmarshalArticle(data)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// MarshalAuthor serializes an Author to bytes.
func MarshalAuthor(author *core.Author) []byte {
	buf := make([]byte, sizeAuthor(author))
	marshalAuthor(author, buf)
	return buf
}

// UnmarshalAuthor deserializes an Author from bytes.
func UnmarshalAuthor(data []byte) (*core.Author, error) {
	author, _, err := unmarshalAuthor(data)
	if err != nil {
		return nil, err
	}
	return author, nil
}

// MarshalCategory serializes a Category to bytes.
func MarshalCategory(category *core.Category) []byte {
	buf := make([]byte, sizeCategory(category))
	marshalCategory(category, buf)
	return buf
}

// UnmarshalCategory deserializes a Category from bytes.
func UnmarshalCategory(data []byte) (*core.Category, error) {
	category, _, err := unmarshalCategory(data)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// time is stored as unix microseconds

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStrings(v []string, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) ([]string, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	v := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, sn, err := ord.String.Unmarshal(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
		v = append(v, s)
	}
	return v, n, nil
}

func sizeStrings(v []string) int {
	size := varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalArticle(a *core.Article, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(a.Id), bs)
	n += varint.Uint64.Marshal(uint64(a.SourceKey), bs[n:])
	n += ord.String.Marshal(a.Title, bs[n:])
	n += ord.String.Marshal(a.Excerpt, bs[n:])
	n += ord.String.Marshal(a.Content, bs[n:])
	n += ord.String.Marshal(a.Image.URL, bs[n:])
	n += ord.String.Marshal(a.Image.Alt, bs[n:])
	n += ord.String.Marshal(a.Image.Caption, bs[n:])
	n += varint.Uint64.Marshal(uint64(a.CategoryId), bs[n:])
	n += varint.Uint64.Marshal(uint64(a.AuthorId), bs[n:])
	n += ord.String.Marshal(a.Status, bs[n:])
	n += marshalTime(a.PublishedAt, bs[n:])
	n += marshalStrings(a.Tags, bs[n:])
	n += ord.String.Marshal(a.Source, bs[n:])
	n += ord.Bool.Marshal(a.Metadata.TelegramSource, bs[n:])
	n += marshalTime(a.Metadata.ImportedAt, bs[n:])
	n += marshalTime(a.InsertedAt, bs[n:])
	n += marshalTime(a.UpdatedAt, bs[n:])
	return n
}

func unmarshalArticle(bs []byte) (*core.Article, int, error) {
	a := &core.Article{}
	var (
		v   uint64
		n   int
		err error
	)
	if v, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return nil, n, err
	}
	a.Id = core.ID(v)
	total := n
	if v, n, err = varint.Uint64.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	a.SourceKey = core.ID(v)
	total += n
	if a.Title, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Excerpt, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Content, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Image.URL, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Image.Alt, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Image.Caption, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if v, n, err = varint.Uint64.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	a.CategoryId = core.ID(v)
	total += n
	if v, n, err = varint.Uint64.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	a.AuthorId = core.ID(v)
	total += n
	if a.Status, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.PublishedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Tags, n, err = unmarshalStrings(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Source, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Metadata.TelegramSource, n, err = ord.Bool.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Metadata.ImportedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.InsertedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.UpdatedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	return a, total, nil
}

func sizeArticle(a *core.Article) int {
	size := varint.Uint64.Size(uint64(a.Id))
	size += varint.Uint64.Size(uint64(a.SourceKey))
	size += ord.String.Size(a.Title)
	size += ord.String.Size(a.Excerpt)
	size += ord.String.Size(a.Content)
	size += ord.String.Size(a.Image.URL)
	size += ord.String.Size(a.Image.Alt)
	size += ord.String.Size(a.Image.Caption)
	size += varint.Uint64.Size(uint64(a.CategoryId))
	size += varint.Uint64.Size(uint64(a.AuthorId))
	size += ord.String.Size(a.Status)
	size += sizeTime(a.PublishedAt)
	size += sizeStrings(a.Tags)
	size += ord.String.Size(a.Source)
	size += ord.Bool.Size(a.Metadata.TelegramSource)
	size += sizeTime(a.Metadata.ImportedAt)
	size += sizeTime(a.InsertedAt)
	size += sizeTime(a.UpdatedAt)
	return size
}

func marshalAuthor(a *core.Author, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(a.Id), bs)
	n += ord.String.Marshal(a.Name, bs[n:])
	n += ord.String.Marshal(a.Email, bs[n:])
	n += ord.String.Marshal(a.Role, bs[n:])
	n += ord.Bool.Marshal(a.IsVerified, bs[n:])
	n += marshalTime(a.InsertedAt, bs[n:])
	n += marshalTime(a.UpdatedAt, bs[n:])
	return n
}

func unmarshalAuthor(bs []byte) (*core.Author, int, error) {
	a := &core.Author{}
	v, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	a.Id = core.ID(v)
	total := n
	if a.Name, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Email, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.Role, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.IsVerified, n, err = ord.Bool.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.InsertedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if a.UpdatedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	return a, total, nil
}

func sizeAuthor(a *core.Author) int {
	size := varint.Uint64.Size(uint64(a.Id))
	size += ord.String.Size(a.Name)
	size += ord.String.Size(a.Email)
	size += ord.String.Size(a.Role)
	size += ord.Bool.Size(a.IsVerified)
	size += sizeTime(a.InsertedAt)
	size += sizeTime(a.UpdatedAt)
	return size
}

func marshalCategory(c *core.Category, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.Name, bs[n:])
	n += ord.String.Marshal(c.Slug, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func unmarshalCategory(bs []byte) (*core.Category, int, error) {
	c := &core.Category{}
	v, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	c.Id = core.ID(v)
	total := n
	if c.Name, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if c.Slug, n, err = ord.String.Unmarshal(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if c.InsertedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	if c.UpdatedAt, n, err = unmarshalTime(bs[total:]); err != nil {
		return nil, total + n, err
	}
	total += n
	return c, total, nil
}

func sizeCategory(c *core.Category) int {
	size := varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.Name)
	size += ord.String.Size(c.Slug)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}
