package mcpserver

// PostFormatContract is the canonical description of how a subtree in the
// source outline becomes a published post. Served both as a tool result and
// as the ansuz://post-format resource.
const PostFormatContract = `# Ansuz Post Format

A post is a heading in the source outline whose property drawer declares
EXPORT_FILE_NAME. Everything under the heading up to its first sub-heading
becomes the post body.

## Required structure

    * My Post Title                                    :tag1:tag2:
    :PROPERTIES:
    :EXPORT_FILE_NAME: my-post
    :EXPORT_DATE: <2024-03-01 Fri>
    :END:

    Body paragraphs in outline markup.

    #+begin_src go
    fmt.Println("code is preserved byte-for-byte")
    #+end_src

## Properties

- EXPORT_FILE_NAME (required): output file name; ".md" is appended when no
  extension is given. An empty value or a bare truthy marker (t/true/yes/1)
  slugs the heading title instead.
- EXPORT_HUGO_SECTION: content subdirectory; inherited from ancestor
  headings, falls back to the configured default section.
- EXPORT_DATE / EXPORT_HUGO_LASTMOD: org timestamp or ISO date.
- EXPORT_HUGO_TAGS / EXPORT_HUGO_CATEGORIES: space- or comma-separated.
  Tags default to the heading's trailing :tag: markers.
- EXPORT_HUGO_DRAFT: t/true/yes marks the post as a draft.
- EXPORT_DESCRIPTION: summary line for the front matter.
- EXPORT_HUGO_SLUG: URL slug override.
- Any other property is passed through verbatim as a custom front-matter
  field.

## Rules

- Heading depth is the number of leading asterisks; a heading may nest at
  most one level deeper than its parent.
- Sub-headings of a post are not part of its body and are only exported
  when they declare their own EXPORT_FILE_NAME.
- Two posts must not resolve to the same output path.
`
