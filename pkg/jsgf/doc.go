/*
Package jsgf parses sentence-template grammars into expression trees.

The dialect is a restricted JSGF with substitution and entity tags:

	#JSGF V1.0;
	grammar ChangeLight;

	public <ChangeLight> = turn (on | off){state} [the] (light | lamp)
	                     | <ChangeLightColor.ChangeLightColor>;
	<color> = ($colors){color};

Supported operators: sequence (juxtaposition), alternation (|), optional
([...]), grouping ((...)), slot references ($name), rule references
(<rule> or <Grammar.rule>), substitution (word:canonical or (group):canonical),
entity tags ({name} after an item) and bounded repetition ({n} or {m,n}).
Unbounded repetition (* and +) is rejected so every grammar compiles to a
finite automaton. Line comments (//), block comments and #-lines are ignored.
*/
package jsgf
