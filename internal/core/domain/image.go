package domain

import (
	"fmt"
	"strings"
)

// DefaultTag is used when a reference carries no tag.
const DefaultTag = "latest"

// Image is a local image as listed by the engine.
type Image struct {
	ID       string   `json:"id"`
	RepoTags []string `json:"repo_tags"`
}

// ShortID strips the digest algorithm and truncates to 12 characters.
func (i Image) ShortID() string {
	id := strings.TrimPrefix(i.ID, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// ImageRef is a repository name plus tag.
type ImageRef struct {
	Repository string
	Tag        string
}

// ParseImageRef splits "repo[:tag]". A colon that belongs to a registry
// host port ("host:5000/repo") is not treated as a tag separator.
func ParseImageRef(s string) ImageRef {
	i := strings.LastIndex(s, ":")
	if i < 0 || strings.Contains(s[i+1:], "/") {
		return ImageRef{Repository: s, Tag: DefaultTag}
	}
	ref := ImageRef{Repository: s[:i], Tag: s[i+1:]}
	if ref.Tag == "" {
		ref.Tag = DefaultTag
	}
	return ref
}

func (r ImageRef) String() string {
	tag := r.Tag
	if tag == "" {
		tag = DefaultTag
	}
	return r.Repository + ":" + tag
}

// RegistryHost returns the ECR registry host for a region.
func RegistryHost(region string) string {
	return fmt.Sprintf("dkr.ecr.%s.amazonaws.com", region)
}

// QualifiedRef builds the registry-qualified reference used for pushing:
//
//	{account}.dkr.ecr.{region}.amazonaws.com/{repository}:{tag}
func QualifiedRef(account, region string, ref ImageRef) string {
	return fmt.Sprintf("%s.%s/%s", account, RegistryHost(region), ref.String())
}
